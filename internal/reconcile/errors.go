package reconcile

import "fmt"

// PersistError wraps a failed catalog write with enough context to diagnose
// the item without replaying the feed.
type PersistError struct {
	Op                string // "create" or "update"
	Source            string
	ExternalProductID string
	Err               error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s (source=%s external_product_id=%s): %v",
		e.Op, e.Source, e.ExternalProductID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// LookupError wraps a failed mapping query. It is retryable in the same way
// a PersistError is: nothing was written, the run may be re-driven.
type LookupError struct {
	Source            string
	ExternalProductID string
	ExternalVariantID string
	Err               error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("mapping lookup (source=%s external_product_id=%s external_variant_id=%s): %v",
		e.Source, e.ExternalProductID, e.ExternalVariantID, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
