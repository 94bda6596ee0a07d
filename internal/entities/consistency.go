package entities

import "fmt"

// VerifyAggregation checks that every terminal parent in the tree agrees with
// its children: a loaded node must have only loaded children and a node with a
// failed child must itself be failed. Nodes still in flight are skipped.
func VerifyAggregation(c *Chapter) error {
	if c == nil {
		return nil
	}
	for _, t := range c.Targets {
		if t.Entity != nil {
			e := t.Entity
			if err := checkParent("entity "+e.ID, e.Status, e.AssetStatuses()); err != nil {
				return err
			}
			if err := checkParent("target "+t.ID, t.Status, []LoadStatus{e.Status}); err != nil {
				return err
			}
		} else if t.Status == StatusError && t.Error == nil {
			return fmt.Errorf("target %s failed without an error", t.ID)
		}
	}
	return checkParent("chapter "+c.ID, c.Status, c.TargetStatuses())
}

func checkParent(name string, status LoadStatus, children []LoadStatus) error {
	if !status.IsTerminal() {
		return nil
	}
	want := AggregateStatus(children...)
	if status == StatusLoaded && want != StatusLoaded {
		return fmt.Errorf("%s is loaded but its children aggregate to %s", name, want)
	}
	if want == StatusError && status != StatusError {
		return fmt.Errorf("%s is %s but a child failed", name, status)
	}
	return nil
}
