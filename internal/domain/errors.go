package domain

import "errors"

// Errores de acciones rechazadas. Una acción rechazada deja el estado intacto.
var (
	ErrInsufficientCash  = errors.New("insufficient cash")
	ErrBelowMinOrder     = errors.New("amount below minimum order")
	ErrTradeLocked       = errors.New("instrument already traded this month")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrNoHolding         = errors.New("no holding to sell")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrDealClosed        = errors.New("deal window closed")
	ErrNoSlots           = errors.New("no deal slots left")
	ErrInvalidEntryCost  = errors.New("invalid deal entry cost")
	ErrUnknownDeal       = errors.New("unknown deal")
	ErrUnknownAction     = errors.New("unknown home action")
	ErrNothingToRepay    = errors.New("nothing to repay")
	ErrNoCreditAvailable = errors.New("no credit available")
	ErrUnknownDraw       = errors.New("unknown credit draw")
	ErrNoProfession      = errors.New("no profession selected")
	ErrUnknownProfession = errors.New("unknown profession")
)

// ErrGameNotFound indica que no hay snapshot guardado para la partida.
var ErrGameNotFound = errors.New("game not found")
