// Package guard marks value objects as built through their constructors,
// so a zero-value struct can be told apart from a validated one.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in value objects and queries. Its zero value fails
// validation; NewConstructorGuard returns one that passes.
//
//	type PriceQuery struct {
//	    weight decimal.Decimal
//	    guard  guard.ConstructorGuard
//	}
//
//	func (q PriceQuery) Validate() error {
//	    return q.guard.Validate(ErrPriceQueryIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard was not created by NewConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
