package fence

// ExternalRef is an opaque foreign object with an external reference
// count, such as a host buffer owned by a language binding or any other
// resource whose lifetime is managed outside this process's GC. The
// fence package never inspects the object; it only balances Ref and
// Deref calls.
//
// Implementations must be safe for concurrent use: Deref in particular
// may be called from a driver callback goroutine or a completion
// monitor.
type ExternalRef interface {
	// Ref increments the external reference count.
	Ref()

	// Deref decrements the external reference count.
	Deref()
}
