package services

import "errors"

var (
	// ErrValidation pokriva prazna obavezna polja i neispravne vrednosti; ništa se ne upisuje.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCode vraća registracija radnika kada nijedan menadžer ne drži prosleđeni kod.
	ErrInvalidCode = errors.New("invalid team code")

	// ErrProfileNotFound znači autentifikovan identitet bez manager/labor zapisa; pristup se odbija.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidCredentials vraća login za pogrešnu lozinku.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken vraća registracija kada email već postoji u bilo kojoj od dve kolekcije.
	ErrEmailTaken = errors.New("email already registered")

	// ErrForbidden vraćaju mutacije kada sesija nije vlasnik ili trenutni izvršilac zadatka.
	ErrForbidden = errors.New("access forbidden")

	// ErrNotFound je traženi zapis koji ne postoji.
	ErrNotFound = errors.New("not found")

	// ErrTeamCodeExhausted znači da ni posle maksimalnog broja pokušaja nije nađen slobodan kod.
	ErrTeamCodeExhausted = errors.New("could not generate a unique team code")
)
