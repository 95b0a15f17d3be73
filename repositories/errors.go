package repositories

import "errors"

// ErrNotFound vraćaju svi repozitorijumi kada traženi dokument ne postoji.
var ErrNotFound = errors.New("document not found")
