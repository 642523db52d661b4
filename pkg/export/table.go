package export

import "fmt"

// Column describes one exported field. Width is a relative weight used by the
// PDF renderer; zero means an equal share.
type Column struct {
	Key   string
	Label string
	Width float64
}

// Table is the tabular content shared by every renderer.
type Table struct {
	Title    string
	Subtitle string
	Columns  []Column
	Rows     []map[string]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for _, col := range t.Columns {
		if col.Key == "" {
			return fmt.Errorf("column without key")
		}
	}
	return nil
}

func (c Column) header() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}
