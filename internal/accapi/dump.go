package accapi

// dump.go renders a device's correspondence table as JSON for debug
// tooling (the accsim "demo" command's final state report). It uses
// json-iterator's standard-library-compatible API so the hand-rolled
// dumpEntry struct below needs no struct tags beyond what encoding/json
// would also accept.

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type dumpEntry struct {
	Host            string `json:"host"`
	Device          string `json:"device"`
	Size            int    `json:"size"`
	Refcount        string `json:"refcount"`
	VirtualRefcount int32  `json:"virtual_refcount"`
}

// Dump renders every mapping entry currently installed on the given device
// as an indented JSON array.
func (r *Runtime) Dump(deviceID int) (string, error) {
	d := r.device(deviceID)

	entries := d.Snapshot()

	dump := make([]dumpEntry, len(entries))
	for i, e := range entries {
		dump[i] = dumpEntry{
			Host:            e.Host.String(),
			Device:          e.DeviceAddr().String(),
			Size:            e.Size(),
			Refcount:        e.RefcountString(),
			VirtualRefcount: e.VirtualRefcount(),
		}
	}

	buf, err := jsonAPI.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", err
	}

	return string(buf), nil
}
