package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// ErrPassLimit is returned when the fixpoint is not reached within
// Options.MaxPasses passes
var ErrPassLimit = errors.New("fixpoint not reached within pass limit")

// ErrNonGroundFact is returned when an extensional fact contains a
// variable and unsafe output is rejected
var ErrNonGroundFact = errors.New("fact contains a variable")

// UnsafeRuleError reports a rule that produced a non-ground fact
type UnsafeRuleError struct {
	Rule      query.Rule
	Fact      datalog.Atom
	Variables []string
}

func (e *UnsafeRuleError) Error() string {
	return fmt.Sprintf("unsafe rule %s: head variables %s are not bound by the body (derived %s)",
		e.Rule, strings.Join(e.Variables, ", "), e.Fact)
}
