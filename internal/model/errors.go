package model

import "errors"

// Erros de domínio; nenhum deles deixa o estado alterado
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUserNotFound        = errors.New("user not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrEventNotOpen        = errors.New("event not open for betting")
	ErrOutcomeNotFound     = errors.New("outcome not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrEventAlreadySettled = errors.New("event already settled")
	ErrNoOutcomes          = errors.New("event has no outcomes")
	ErrInvalidOutcomes     = errors.New("invalid outcomes")
)
