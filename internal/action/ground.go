package action

import (
	"strings"

	"github.com/sheetpilotlabs/sheetpilot-cli/internal/resolve"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/sheet"
)

// Ground rewrites every must-exist column reference of an action to a
// name present in the schema snapshot, resolving near-misses through the
// policy. Fields that name a column which may not yet exist (a rename's
// new name, a copy's destination, a fresh column's title) are left alone.
//
// Grounding mutates the action in place but only its reference fields;
// the kind and structural fields never change. Grounding an already
// grounded action is a no-op.
//
// The variant enumeration below is correctness-critical: an action shape
// missed here silently skips grounding and the dispatcher will act on an
// unresolved name.
func Ground(a Action, snap sheet.Snapshot, pol resolve.Policy) error {
	switch act := a.(type) {
	case *Sort:
		return groundRef(&act.Column, snap, pol)
	case *MultiSort:
		for i := range act.Keys {
			if err := groundRef(&act.Keys[i].Column, snap, pol); err != nil {
				return err
			}
		}
		return nil
	case *Filter:
		return groundRef(&act.Column, snap, pol)
	case *DeleteRows:
		return groundRef(&act.Column, snap, pol)
	case *RemoveDuplicates:
		return groundRef(&act.Column, snap, pol)
	case *Formula:
		if strings.TrimSpace(act.TargetColumn) == "" {
			// No target named: create a fresh column instead of silently
			// resolving to the nearest existing one.
			act.TargetColumn = snap.NextColumnName()
			act.CreateColumn = true
			return nil
		}
		if act.CreateColumn {
			return nil
		}
		return groundRef(&act.TargetColumn, snap, pol)
	case *ColorColumn:
		return groundRef(&act.Column, snap, pol)
	case *ColorIf:
		return groundRef(&act.Column, snap, pol)
	case *ColorMulti:
		for i := range act.Rules {
			if err := groundRef(&act.Rules[i].Column, snap, pol); err != nil {
				return err
			}
		}
		return nil
	case *ColorNumberRange:
		return groundRef(&act.Column, snap, pol)
	case *AddColumn:
		// Name is the new column's title; only the anchor must exist.
		return groundRef(&act.Anchor, snap, pol)
	case *DeleteColumn:
		return groundRef(&act.Column, snap, pol)
	case *MoveColumn:
		if err := groundRef(&act.Column, snap, pol); err != nil {
			return err
		}
		return groundRef(&act.Target, snap, pol)
	case *RenameColumn:
		// NewName stays untouched.
		return groundRef(&act.Column, snap, pol)
	case *FillDown:
		return groundRef(&act.Column, snap, pol)
	case *AddSerial:
		return groundRef(&act.Column, snap, pol)
	case *CopyColumn:
		// Target is the copy's new title, never grounded.
		return groundRef(&act.Source, snap, pol)
	case *ColorRow, *ColorRange, *AddColumnSerial, *AddRow, *DeleteRow,
		*Freeze, *MergeCells, *CopyRow, *MoveRow, *ClearFormatting:
		// No must-exist column references.
		return nil
	}
	return nil
}

// groundRef resolves one reference in place. Empty references and names
// already present verbatim pass through unchanged.
func groundRef(ref *string, snap sheet.Snapshot, pol resolve.Policy) error {
	if strings.TrimSpace(*ref) == "" {
		return nil
	}
	if snap.HasColumn(*ref) {
		return nil
	}
	resolved, err := pol.Resolve(*ref, snap.Columns)
	if err != nil {
		return err
	}
	*ref = resolved
	return nil
}
