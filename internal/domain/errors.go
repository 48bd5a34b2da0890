package domain

import "errors"

// Error is a domain error with a stable code. Adapters resolve the code to a
// localized user-facing message; the embedded text is for logs only.
type Error struct {
	code string
	text string
}

func (e *Error) Error() string { return e.text }

// Code extracts the domain error code from err, or "" if err is not a
// domain error.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return ""
}

func newError(code, text string) *Error {
	return &Error{code: code, text: text}
}

// Domain errors.
var (
	ErrTemplateNotFound = newError("template_not_found", "template introuvable")
	ErrTemplateInvalid  = newError("template_invalid", "template invalide")
	ErrRaidNotFound     = newError("raid_not_found", "raid introuvable")
	ErrRaidClosed       = newError("raid_closed", "raid terminé")
	ErrSignupsClosed    = newError("signups_closed", "inscriptions fermées (mass-up déjà envoyé)")
	ErrRoleNotFound     = newError("role_not_found", "rôle de compo invalide")
	ErrNotSignedUp      = newError("not_signed_up", "participant non inscrit")
	ErrAlreadySignedUp  = newError("already_signed_up", "déjà inscrit sur un autre rôle")
	ErrMissingGuildRole = newError("missing_guild_role", "rôle Discord requis manquant")
	ErrIPRequired       = newError("ip_required", "IP requise pour ce rôle")
	ErrIPOutOfRange     = newError("ip_out_of_range", "IP hors limites")
	ErrIPTooLow         = newError("ip_too_low", "IP insuffisante pour ce rôle")
	ErrNotManager       = newError("not_manager", "permission insuffisante")
	ErrDateTimeInPast   = newError("datetime_in_past", "la date et l'heure doivent être dans le futur")
	ErrLeaderLocked     = newError("leader_locked", "le rôle Raid Leader est réservé au créateur du raid")
)
