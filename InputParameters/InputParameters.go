package InputParameters

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ghodss/yaml"
	"github.com/notargets/gomdal/types"
)

// DatasetInput is one timestep of a group input file
type DatasetInput struct {
	Time   float64   `json:"Time"` // Hours since the group's reference time
	Values []float64 `json:"Values"`
	Active []int     `json:"Active,omitempty"`
}

// Parameters obtained from the YAML input file of the add command
type GroupInput struct {
	Name          string            `json:"Name"`
	Location      string            `json:"Location"` // vertices or faces
	Vector        bool              `json:"Vector"`
	Driver        string            `json:"Driver"`
	File          string            `json:"File"`
	ReferenceTime *time.Time        `json:"ReferenceTime,omitempty"`
	Metadata      map[string]string `json:"Metadata"`
	Datasets      []DatasetInput    `json:"Datasets"`
}

func (gi *GroupInput) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, gi); err != nil {
		return types.Wrap(types.ErrInvalidData, err, "parsing group input")
	}
	if gi.DataLocation() == types.DataInvalidLocation {
		return types.Errorf(types.ErrInvalidData, "unknown location [%s], use vertices or faces", gi.Location)
	}
	return
}

func (gi *GroupInput) DataLocation() types.DataLocation {
	return types.NewDataLocation(gi.Location)
}

// DatasetTime converts a dataset's hours into an offset
func (di DatasetInput) DatasetTime() time.Duration {
	return time.Duration(di.Time * float64(time.Hour))
}

// MetadataKeys lists the metadata keys in sorted order
func (gi *GroupInput) MetadataKeys() (keys []string) {
	keys = make([]string, 0, len(gi.Metadata))
	for k := range gi.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

func (gi *GroupInput) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Name\n", gi.Name)
	fmt.Fprintf(w, "[%s]\t\t= Location\n", gi.DataLocation())
	fmt.Fprintf(w, "%v\t\t\t= Vector\n", gi.Vector)
	fmt.Fprintf(w, "[%s]\t\t= Driver\n", gi.Driver)
	fmt.Fprintf(w, "[%s]\t= File\n", gi.File)
	if gi.ReferenceTime != nil {
		fmt.Fprintf(w, "[%s]\t= ReferenceTime\n", gi.ReferenceTime.Format(time.RFC3339))
	}
	for _, key := range gi.MetadataKeys() {
		fmt.Fprintf(w, "Metadata[%s] = %s\n", key, gi.Metadata[key])
	}
	fmt.Fprintf(w, "[%d]\t\t\t= Datasets\n", len(gi.Datasets))
}
