package pipeline

import "smsingest/pkg/config"

// Rename maps an incoming column name to its canonical name.
type Rename struct {
	From string
	To   string
}

// Schema describes the column contract of a dataset.
type Schema struct {
	Drop    []string // columns that must exist and are removed
	Rename  []Rename // columns that must exist and are renamed
	Columns []string // exact column set after Drop and Rename; nil skips the check
}

// SMSSpamSchema is the contract for the SMS spam collection:
// three empty trailing columns and v1/v2 for label and message.
func SMSSpamSchema() Schema {
	return Schema{
		Drop:    []string{"Unnamed: 2", "Unnamed: 3", "Unnamed: 4"},
		Rename:  []Rename{{From: "v1", To: "target"}, {From: "v2", To: "text"}},
		Columns: []string{"target", "text"},
	}
}

// SchemaFromConfig converts the configured contract.
func SchemaFromConfig(c config.SchemaConfig) Schema {
	s := Schema{
		Drop:    append([]string(nil), c.Drop...),
		Columns: append([]string(nil), c.Columns...),
	}
	for _, r := range c.Rename {
		s.Rename = append(s.Rename, Rename{From: r.From, To: r.To})
	}
	return s
}
