package main

// IdleInhibitor is the contract shared by the inhibition backends. Apply is
// idempotent in both directions: asserting an already asserted backend or
// releasing an already released one is a no-op.
type IdleInhibitor interface {
	Name() string
	Apply(inhibit bool) error
}

// DryRunInhibitor replaces the real backends in dry-run mode. It only logs
// the transitions that would have happened.
type DryRunInhibitor struct {
	inhibited bool
}

func (d *DryRunInhibitor) Name() string { return "dry-run" }

func (d *DryRunInhibitor) Apply(inhibit bool) error {
	if inhibit == d.inhibited {
		return nil
	}
	d.inhibited = inhibit
	if inhibit {
		lg.Info("idle inhibitor would be ENABLED", "backend", d.Name())
	} else {
		lg.Info("idle inhibitor would be DISABLED", "backend", d.Name())
	}
	return nil
}
