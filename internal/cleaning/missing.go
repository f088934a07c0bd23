package cleaning

import (
	"fmt"

	"vcpulse/internal/errors"
	"vcpulse/pkg/contracts/domain"
)

// applyMissingPolicy resolves every missing cell according to the
// column's declared strategy. Row drops are resolved first and remove
// the row for all columns, so a fill strategy never resurrects a
// dropped row. After this stage every cell is either a real value or
// the explicit missing sentinel.
func applyMissingPolicy(table *Table, schema domain.Schema) (dropped int, filled map[string]int, err error) {
	type fillCol struct {
		idx  int
		rule domain.ColumnRule
		def  Value
	}

	var dropCols []int
	var fillCols []fillCol

	for i, name := range table.Columns {
		rule, ok := schema.Rule(name)
		if !ok {
			continue
		}
		switch rule.Strategy {
		case domain.DropRow:
			dropCols = append(dropCols, i)
		case domain.FillDefault:
			def, failed := CoerceCell(rule.Default, rule.Kind)
			if failed || def.Missing {
				// A default that cannot be coerced is a configuration
				// mistake, not a data-quality problem.
				return 0, nil, errors.NewConfigError(
					fmt.Sprintf("default %q for column %q is not a valid %s", rule.Default, rule.Name, rule.Kind), nil)
			}
			fillCols = append(fillCols, fillCol{idx: i, rule: rule, def: def})
		}
	}

	filled = make(map[string]int)

	kept := table.Rows[:0]
	for _, row := range table.Rows {
		drop := false
		for _, idx := range dropCols {
			if row[idx].Missing {
				drop = true
				break
			}
		}
		if drop {
			dropped++
			continue
		}
		for _, fc := range fillCols {
			if row[fc.idx].Missing {
				row[fc.idx] = fc.def
				filled[fc.rule.Name]++
			}
		}
		kept = append(kept, row)
	}
	table.Rows = kept

	return dropped, filled, nil
}
