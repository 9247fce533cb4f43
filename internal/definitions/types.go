// Package definitions provides access to the data set definitions that the
// registrar pushes to remote server instances as query definitions.
package definitions

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ProviderRemote is the provider name of data sets that are evaluated on a remote server
	ProviderRemote = "REMOTE"

	// DefaultTarget is the query target used when the data set name carries no target prefix
	DefaultTarget = "CUSTOM"

	// targetSeparator separates the target prefix from the rest of a data set name
	targetSeparator = "-"
)

// ErrInvalidDefinition is returned when a definition cannot be registered because it is malformed
var ErrInvalidDefinition = errors.New("invalid definition")

// DataSetDef is a data set definition as stored by the definition source
type DataSetDef struct {
	// UUID is the stable identifier of the data set
	UUID string `yaml:"uuid" json:"uuid"`

	// Name is the display name. The text before the first "-" selects the query target.
	Name string `yaml:"name" json:"name"`

	// Provider identifies where the data set is evaluated (REMOTE, SQL, CSV, BEAN...)
	Provider string `yaml:"provider" json:"provider"`

	// Expression is the query body, typically SQL
	Expression string `yaml:"expression" json:"expression"`

	// DataSource is the data source reference on the remote server
	DataSource string `yaml:"dataSource" json:"dataSource"`

	// LocalOnly marks definitions that are only listed when explicitly requested
	LocalOnly bool `yaml:"localOnly,omitempty" json:"localOnly,omitempty"`
}

// IsRemote reports whether the data set is evaluated on a remote server
func (d DataSetDef) IsRemote() bool {
	return d.Provider == ProviderRemote
}

// PendingDefinition is one query definition awaiting registration on a server instance.
// Its JSON form is the payload accepted by the remote query definitions endpoint.
type PendingDefinition struct {
	Name       string `json:"query-name"`
	Source     string `json:"query-source"`
	Expression string `json:"query-expression"`
	Target     string `json:"query-target"`
}

// Validate checks that the definition carries what the remote server requires
func (p PendingDefinition) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if p.Expression == "" {
		return fmt.Errorf("%w: definition %s has no expression", ErrInvalidDefinition, p.Name)
	}
	return nil
}

// TargetFor derives the query target from a data set name
func TargetFor(name string) string {
	if idx := strings.Index(name, targetSeparator); idx >= 0 {
		return name[:idx]
	}
	return DefaultTarget
}

// FromDataSet converts a data set definition into the query definition registered remotely
func FromDataSet(def DataSetDef) PendingDefinition {
	return PendingDefinition{
		Name:       def.UUID,
		Source:     def.DataSource,
		Expression: def.Expression,
		Target:     TargetFor(def.Name),
	}
}

// RemoteDefinitions keeps the remote data sets and converts them, preserving order
func RemoteDefinitions(defs []DataSetDef) []PendingDefinition {
	result := make([]PendingDefinition, 0, len(defs))
	for _, def := range defs {
		if !def.IsRemote() {
			continue
		}
		result = append(result, FromDataSet(def))
	}
	return result
}
