package entity

import "errors"

var (
	ErrInvalidFunnel        = errors.New("funil inválido")
	ErrStageNotInFunnel     = errors.New("etapa não pertence ao funil")
	ErrLeadNotFound         = errors.New("lead não encontrado")
	ErrLeadAlreadyExists    = errors.New("já existe um lead com este email")
	ErrFollowUpNotFound     = errors.New("follow-up não encontrado")
	ErrMeetingNotFound      = errors.New("reunião não encontrada")
	ErrNotificationNotFound = errors.New("notificação não encontrada")
	ErrNPSConfigNotFound    = errors.New("configuração de NPS não encontrada")
	ErrInvitationNotFound   = errors.New("convite não encontrado")
	ErrInvitationExpired    = errors.New("convite expirado")
	ErrAlreadyResponded     = errors.New("pesquisa já respondida")
	ErrInvalidTransition    = errors.New("transição de status inválida")
)
