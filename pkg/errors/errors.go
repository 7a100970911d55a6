package errors

import "errors"

// ErrOptimisticLock el registro fue modificado por otra operación
var ErrOptimisticLock = errors.New("el registro fue modificado por otra operación, recargue e intente nuevamente")
