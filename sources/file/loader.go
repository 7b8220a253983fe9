package cardfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-contract-card/contract"
)

// Document is the wrapped file layout: a top level "contracts" list.
type Document struct {
	Contracts []contract.Record `yaml:"contracts"`
}

// Load reads contract records from a YAML or JSON file.
func Load(path string) ([]contract.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, contract.NewError(contract.KindNotFound, fmt.Sprintf("record file %q not found", path), err)
		}
		return nil, contract.NewError(contract.KindInternal, fmt.Sprintf("open record file %q", path), err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses records from r. The payload may be a list of records, a
// mapping with a "contracts" list, or a single record mapping. JSON input is
// accepted as YAML.
func Decode(r io.Reader) ([]contract.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, contract.NewError(contract.KindInternal, "read records", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, contract.NewError(contract.KindValidation, "record file is empty", nil)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, contract.NewError(contract.KindValidation, "invalid record file", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var records []contract.Record
	switch root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&records)
	case yaml.MappingNode:
		if hasKey(root, "contracts") {
			var wrapped Document
			err = root.Decode(&wrapped)
			records = wrapped.Contracts
		} else {
			var record contract.Record
			err = root.Decode(&record)
			records = []contract.Record{record}
		}
	default:
		return nil, contract.NewError(contract.KindValidation, "record file must hold a mapping or a list", nil)
	}
	if err != nil {
		return nil, contract.NewError(contract.KindValidation, "invalid contract record", err)
	}

	for i, record := range records {
		if err := record.Validate(); err != nil {
			return nil, contract.NewError(contract.KindValidation, fmt.Sprintf("record %d", i), err)
		}
	}
	return records, nil
}

// LoadOne reads a file that must hold exactly one record.
func LoadOne(path string) (contract.Record, error) {
	records, err := Load(path)
	if err != nil {
		return contract.Record{}, err
	}
	if len(records) != 1 {
		return contract.Record{}, contract.NewError(contract.KindValidation, fmt.Sprintf("expected one record in %q, found %d", path, len(records)), nil)
	}
	return records[0], nil
}

// NewSource loads path into an in-memory source keyed by record id.
func NewSource(path string) (*contract.MemorySource, error) {
	records, err := Load(path)
	if err != nil {
		return nil, err
	}
	return contract.NewMemorySource(records...)
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
