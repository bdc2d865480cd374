// Package agent runs the full instruction pipeline: read the schema,
// ask the oracle for a payload, parse and ground it, then dispatch the
// mutation. Run never panics and never leaks a raw failure; every
// outcome folds into a Result the caller can print or serialize.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheetpilotlabs/sheetpilot-cli/internal/action"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/dispatch"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/oracle"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/resolve"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/sheet"
)

// Runner wires the pipeline's collaborators together. The zero Policy
// gives the default fuzzy matching threshold.
type Runner struct {
	Sheets sheet.Service
	Oracle oracle.Oracle
	Logger *zap.Logger
	Policy resolve.Policy
}

// Result is the terminal envelope of one instruction. Exactly one of
// the success or error halves is populated, keyed by Status.
type Result struct {
	Status   string
	Action   action.Kind
	Fields   map[string]any
	Response json.RawMessage
	Message  string
	Details  string
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MarshalJSON flattens the per-action fields into the envelope so a
// sort result reads {"status":"success","action":"sort","column":...}.
func (r Result) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+3)
	m["status"] = r.Status
	if r.Status == StatusError {
		m["message"] = r.Message
		if r.Details != "" {
			m["details"] = r.Details
		}
		return json.Marshal(m)
	}
	m["action"] = r.Action
	for k, v := range r.Fields {
		m[k] = v
	}
	if len(r.Response) > 0 {
		m["response"] = r.Response
	}
	return json.Marshal(m)
}

func failure(message string, err error) Result {
	res := Result{Status: StatusError, Message: message}
	if err != nil {
		res.Details = err.Error()
	}
	return res
}

// Run executes one instruction against one sheet. It always returns a
// Result; malformed oracle output, unknown references, and service
// refusals all surface as error results rather than crashes.
func (r *Runner) Run(ctx context.Context, spreadsheetID, sheetName, instruction string, headerRow int) (res Result) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("sheet", sheetName),
	)

	// The pipeline dereferences oracle output it does not control; a bug
	// there must degrade to an error result, not take the process down.
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("pipeline panic", zap.Any("panic", rec))
			res = failure("internal error while applying the instruction", fmt.Errorf("%v", rec))
		}
	}()

	if instruction == "" {
		return failure("instruction must not be empty", nil)
	}
	if spreadsheetID == "" {
		return failure("spreadsheet id must not be empty", nil)
	}

	snap, err := sheet.Read(ctx, r.Sheets, spreadsheetID, sheetName, headerRow)
	if err != nil {
		log.Warn("schema read failed", zap.Error(err))
		return failure("could not read the sheet's header row", err)
	}
	log.Debug("schema snapshot", zap.Strings("columns", snap.Columns), zap.Int64("sheet_id", snap.SheetID))

	raw, err := r.Oracle.ProposeAction(ctx, instruction, snap.Columns)
	if err != nil {
		log.Warn("oracle call failed", zap.Error(err))
		return failure("could not translate the instruction", err)
	}

	act, err := action.Parse(raw)
	if err != nil {
		log.Warn("payload rejected", zap.Error(err), zap.String("raw", raw))
		return failure(err.Error(), nil)
	}
	log.Debug("parsed action", zap.String("kind", string(act.Kind())))

	if err := action.Ground(act, snap, r.Policy); err != nil {
		log.Warn("grounding failed", zap.Error(err))
		return failure("could not match the instruction to the sheet's columns", err)
	}

	out, err := dispatch.Dispatch(ctx, r.Sheets, act, snap, spreadsheetID)
	if err != nil {
		log.Warn("dispatch failed", zap.String("kind", string(act.Kind())), zap.Error(err))
		return failure(fmt.Sprintf("could not apply the %s action", act.Kind()), err)
	}

	log.Info("action applied", zap.String("kind", string(act.Kind())))
	res = Result{
		Status: StatusSuccess,
		Action: act.Kind(),
		Fields: out.Fields,
	}
	res.Response = out.Response
	return res
}
