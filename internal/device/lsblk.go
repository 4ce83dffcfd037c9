package device

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/kriansa/drive-pi/internal/command"
	"github.com/kriansa/drive-pi/internal/log"
)

// lsblkArgs asks for a JSON tree with just the columns we need.
var lsblkArgs = []string{"--json", "--output", "NAME,SIZE,FSTYPE,MOUNTPOINTS"}

// LsblkEnumerator implements Enumerator using lsblk(8)
type LsblkEnumerator struct {
	root string
	exec command.Executor
}

// NewLsblkEnumerator creates an enumerator for the given canonical mount root
func NewLsblkEnumerator(root string, exec command.Executor) *LsblkEnumerator {
	return &LsblkEnumerator{
		root: root,
		exec: exec,
	}
}

type lsblkOutput struct {
	BlockDevices *[]lsblkDevice `json:"blockdevices"`
}

type lsblkDevice struct {
	Name        string        `json:"name"`
	Size        *string       `json:"size"`
	FSType      *string       `json:"fstype"`
	Mountpoints *[]*string    `json:"mountpoints"`
	Children    []lsblkDevice `json:"children"`
}

// List returns all partitions reported by lsblk
func (e *LsblkEnumerator) List(ctx context.Context) ([]Device, error) {
	output, err := e.exec.Output(ctx, "lsblk", lsblkArgs...)
	if err != nil {
		return nil, &EnumerationError{Err: fmt.Errorf("run lsblk: %w", err)}
	}

	devices, err := e.parse(output)
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}

	log.Debug("enumerated devices", "backend", "lsblk", "count", len(devices))
	return devices, nil
}

// parse converts lsblk JSON into devices. Only children of top-level devices
// are considered; the disks themselves are never offered.
// Example:
//
//	{"blockdevices": [
//	  {"name": "sda", "size": "32G", "fstype": null, "mountpoints": [null],
//	   "children": [
//	     {"name": "sda1", "size": "32G", "fstype": "vfat", "mountpoints": [null]}
//	  ]}
//	]}
func (e *LsblkEnumerator) parse(output []byte) ([]Device, error) {
	var out lsblkOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("parse lsblk output: %w", err)
	}
	if out.BlockDevices == nil {
		return nil, fmt.Errorf("parse lsblk output: missing blockdevices")
	}

	devices := []Device{}
	for _, disk := range *out.BlockDevices {
		for _, part := range disk.Children {
			if part.Name == "" || part.Size == nil || part.Mountpoints == nil {
				return nil, fmt.Errorf("parse lsblk output: partition of %q is missing name, size or mountpoints", disk.Name)
			}

			var mountpoints []string
			for _, mp := range *part.Mountpoints {
				if mp != nil && *mp != "" {
					mountpoints = append(mountpoints, *mp)
				}
			}

			mounted, include := classify(e.root, mountpoints)
			if !include {
				log.Debug("hiding partition mounted outside mount root", "device", part.Name, "mountpoints", mountpoints)
				continue
			}

			dev := Device{
				Name:      part.Name,
				Size:      *part.Size,
				MountPath: filepath.Join(e.root, part.Name),
				Mounted:   mounted,
			}
			if part.FSType != nil {
				dev.FSType = *part.FSType
			}
			devices = append(devices, dev)
		}
	}

	return devices, nil
}
