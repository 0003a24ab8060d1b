package services

import "errors"

// Directory and ledger failures are plain sentinel values so handlers can
// translate them into inline form feedback instead of crashing the page.
var (
	ErrValidation         = errors.New("champ requis manquant ou invalide")
	ErrNotFound           = errors.New("aucun compte trouvé avec cet email")
	ErrRoleMismatch       = errors.New("le rôle demandé ne correspond pas au compte")
	ErrInvalidCredentials = errors.New("mot de passe incorrect")
	ErrForbiddenRole      = errors.New("l'inscription admin est désactivée, contactez un administrateur")
	ErrDuplicateAccount   = errors.New("un compte avec cet email existe déjà")
	ErrPasswordTooShort   = errors.New("le mot de passe doit contenir au moins 6 caractères")
)

// UserMessage maps an error to the short text shown next to the form. Errors
// outside the taxonomy fall back to a generic message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "Email, mot de passe et rôle sont requis."
	case errors.Is(err, ErrNotFound):
		return "Aucun compte trouvé avec cet email."
	case errors.Is(err, ErrRoleMismatch):
		return "Ce compte est enregistré sous un autre rôle."
	case errors.Is(err, ErrInvalidCredentials):
		return "Mot de passe incorrect."
	case errors.Is(err, ErrForbiddenRole):
		return "L'inscription admin est désactivée. Contactez un administrateur."
	case errors.Is(err, ErrDuplicateAccount):
		return "Un compte avec cet email existe déjà."
	case errors.Is(err, ErrPasswordTooShort):
		return "Le mot de passe doit contenir au moins 6 caractères."
	default:
		return "Une erreur est survenue. Réessayez."
	}
}
