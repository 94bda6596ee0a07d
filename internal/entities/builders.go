package entities

// Copy-on-write builders. Each With* method returns a new node and leaves the
// receiver untouched; unchanged children are shared by reference, so only the
// path from the root to the changed node is ever copied.

// WithStatus returns a copy of the asset with the given status and error.
func (a *Asset) WithStatus(status LoadStatus, err *ErrorInfo) *Asset {
	next := *a
	next.Status = status
	next.Error = err
	return &next
}

// WithStatus returns a copy of the entity with the given status and error.
func (e *Entity) WithStatus(status LoadStatus, err *ErrorInfo) *Entity {
	next := *e
	next.Status = status
	next.Error = err
	return &next
}

// WithAssets returns a copy of the entity holding the given assets.
func (e *Entity) WithAssets(assets []*Asset) *Entity {
	next := *e
	next.Assets = append([]*Asset(nil), assets...)
	return &next
}

// WithStatus returns a copy of the target with the given status and error.
func (t *Target) WithStatus(status LoadStatus, err *ErrorInfo) *Target {
	next := *t
	next.Status = status
	next.Error = err
	return &next
}

// WithEntity returns a copy of the target pointing at the given entity.
func (t *Target) WithEntity(entity *Entity) *Target {
	next := *t
	next.Entity = entity
	return &next
}

// WithStatus returns a copy of the chapter with the given status and error.
func (c *Chapter) WithStatus(status LoadStatus, err *ErrorInfo) *Chapter {
	next := *c
	next.Status = status
	next.Error = err
	return &next
}

// WithTarget returns a copy of the chapter whose i-th target is replaced.
// Sibling targets are shared with the receiver.
func (c *Chapter) WithTarget(i int, target *Target) *Chapter {
	next := *c
	next.Targets = make([]*Target, len(c.Targets))
	copy(next.Targets, c.Targets)
	next.Targets[i] = target
	return &next
}

// DeepClone copies the whole tree so that no node is shared with the receiver.
func (c *Chapter) DeepClone() *Chapter {
	if c == nil {
		return nil
	}
	next := *c
	next.Error = c.Error.clone()
	next.Targets = make([]*Target, len(c.Targets))
	for i, t := range c.Targets {
		nt := *t
		nt.Tags = append([]string(nil), t.Tags...)
		nt.RelatedTargets = append([]string(nil), t.RelatedTargets...)
		nt.Error = t.Error.clone()
		if t.Entity != nil {
			ne := *t.Entity
			ne.Error = t.Entity.Error.clone()
			ne.Assets = make([]*Asset, len(t.Entity.Assets))
			for j, a := range t.Entity.Assets {
				na := *a
				na.Error = a.Error.clone()
				ne.Assets[j] = &na
			}
			nt.Entity = &ne
		}
		next.Targets[i] = &nt
	}
	return &next
}

func (e *ErrorInfo) clone() *ErrorInfo {
	if e == nil {
		return nil
	}
	next := *e
	if e.Details != nil {
		next.Details = make([]ErrorInfo, len(e.Details))
		for i := range e.Details {
			next.Details[i] = *e.Details[i].clone()
		}
	}
	return &next
}
