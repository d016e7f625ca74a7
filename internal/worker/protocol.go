package worker

import (
	"fmt"
	"strconv"
	"strings"

	m "github.com/pragmatics/jumble/internal/model"
)

// Descriptor is the JSON document a forked jumble-worker process reads as
// its first line of stdin: everything it needs to mutate and test one
// class without re-deriving anything the parent process already computed
// (spec.md §4.G — the worker process never re-warms-up or re-counts).
type Descriptor struct {
	ClassPath       string            `json:"classPath"`
	ClassBinaryName string            `json:"classBinaryName"`
	Classpath       []string          `json:"classpath"`
	ExtraDeferred   []string          `json:"extraDeferred"`
	WorkDir         string            `json:"workDir"`
	EnabledKinds    map[m.Kind]bool   `json:"enabledKinds"`
	ExcludedMethods map[string]bool   `json:"excludedMethods"`
	Tests           []m.TestTiming    `json:"tests"`
	Killers         map[string]string `json:"killers"` // PointKey -> killer test class
	BudgetMillis    int64             `json:"budgetMillis"`
}

// PointKey renders a model.Point as a stable map key for JSON transport,
// since JSON object keys must be strings and model.Point is a struct.
func PointKey(p m.Point) string {
	return fmt.Sprintf("%d:%d:%s", p.MethodIndex, p.Offset, p.Kind)
}

// ParsePointKey reverses PointKey, for the worker side decoding Killers.
func ParsePointKey(key string) (m.Point, error) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return m.Point{}, fmt.Errorf("worker: malformed point key %q", key)
	}

	methodIdx, err := strconv.Atoi(parts[0])
	if err != nil {
		return m.Point{}, fmt.Errorf("worker: malformed point key %q: %w", key, err)
	}

	offset, err := strconv.Atoi(parts[1])
	if err != nil {
		return m.Point{}, fmt.Errorf("worker: malformed point key %q: %w", key, err)
	}

	return m.Point{MethodIndex: methodIdx, Offset: offset, Kind: m.Kind(parts[2])}, nil
}

// ToTestOrder rebuilds the *model.TestOrder the descriptor's Tests/Killers
// encode, so the worker process sees exactly the ordering/killer-memory
// state the parent had at fork time.
func (d Descriptor) ToTestOrder() (*m.TestOrder, error) {
	order := m.NewTestOrder(d.Tests)

	for key, killer := range d.Killers {
		p, err := ParsePointKey(key)
		if err != nil {
			return nil, err
		}

		order.Promote(p, killer)
	}

	return order, nil
}

// Line-protocol verbs exchanged over stdout once a Descriptor has been
// consumed (spec.md §4.G).
const (
	verbPass        = "PASS"
	verbFail        = "FAIL"
	verbTimeout     = "TIMEOUT"
	verbErr         = "ERR"
	verbNoSuchPoint = "NoSuchPoint"
	verbDone        = "DONE"
)

// FormatVerdict renders one mutant's outcome as a single line-protocol
// line, matching the wire format cmd/jumble-worker writes and the parent
// process's reader parses.
func FormatVerdict(index int, v m.Verdict) string {
	switch v.Outcome {
	case m.Killed:
		if v.Killer != "" {
			return fmt.Sprintf("%s %d by %s", verbFail, index, v.Killer)
		}

		return fmt.Sprintf("%s %d", verbFail, index)
	case m.Timeout:
		return fmt.Sprintf("%s %d", verbTimeout, index)
	case m.Survived:
		return fmt.Sprintf("%s %d", verbPass, index)
	case m.FailedToLoad, m.RuntimeError:
		return fmt.Sprintf("%s %d %s", verbErr, index, v.Reason)
	default:
		return fmt.Sprintf("%s %d", verbNoSuchPoint, index)
	}
}

// ParseVerdictLine parses one line-protocol line back into (index, verdict).
// ok is false for the DONE sentinel, which carries no index.
func ParseVerdictLine(line string) (index int, verdict m.Verdict, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, m.Verdict{}, false, fmt.Errorf("worker: empty line-protocol line")
	}

	if fields[0] == verbDone {
		return 0, m.Verdict{}, false, nil
	}

	if len(fields) < 2 {
		return 0, m.Verdict{}, false, fmt.Errorf("worker: malformed line-protocol line %q", line)
	}

	index, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, m.Verdict{}, false, fmt.Errorf("worker: malformed index in %q: %w", line, err)
	}

	switch fields[0] {
	case verbPass:
		return index, m.Verdict{Index: index, Outcome: m.Survived}, true, nil
	case verbTimeout:
		return index, m.Verdict{Index: index, Outcome: m.Timeout}, true, nil
	case verbFail:
		killer := ""
		if len(fields) >= 4 && fields[2] == "by" {
			killer = strings.Join(fields[3:], " ")
		}

		return index, m.Verdict{Index: index, Outcome: m.Killed, Killer: killer}, true, nil
	case verbErr:
		reason := ""
		if len(fields) > 2 {
			reason = strings.Join(fields[2:], " ")
		}

		return index, m.Verdict{Index: index, Outcome: m.RuntimeError, Reason: reason}, true, nil
	case verbNoSuchPoint:
		return index, m.Verdict{Index: index, Outcome: m.RuntimeError, Reason: "no such mutation point"}, true, nil
	default:
		return 0, m.Verdict{}, false, fmt.Errorf("worker: unknown line-protocol verb in %q", line)
	}
}
