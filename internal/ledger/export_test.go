package ledger

// SetIDGenerator replaces the client identifier source.
func (l *Ledger) SetIDGenerator(f func() string) { l.newID = f }
