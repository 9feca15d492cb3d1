// Package i18n holds the UI message catalog and language negotiation.
package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when the client expresses no supported preference.
const DefaultLang = "en"

type langKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the request language, defaulting to DefaultLang.
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLang
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// DetectLanguage picks the first supported primary tag from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		primary := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(primary) {
			return primary
		}
	}
	return DefaultLang
}

// T translates code into lang, falling back to the default catalog and then to code itself.
func T(lang, code string) string {
	if m, ok := catalogs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[DefaultLang][code]; ok {
		return s
	}
	return code
}

var catalogs = map[string]map[string]string{
	"en": {
		"required":      "Required",
		"invalid_id":    "Must be a positive number",
		"invalid_ids":   "Must be a comma separated list of numbers",
		"too_short":     "Too short",
		"unknown_value": "Unknown value",

		"app_name":      "Dealflow",
		"nav_home":      "Home",
		"nav_login":     "Log in",
		"nav_logout":    "Log out",
		"nav_display":   "Pipeline overview",
		"nav_dashboard": "Dashboard",
		"nav_password":  "Change password",
		"nav_users":     "Users",
		"nav_add_user":  "Add user",
		"btn_submit":    "Submit",
		"forbidden":     "Forbidden",
		"not_found":     "Not found",

		"flash_login_failed":         "Invalid username or password",
		"flash_logged_out":           "You have been logged out",
		"flash_form_invalid":         "Please correct the highlighted fields",
		"flash_generic_error":        "Something went wrong, please try again",
		"flash_not_found":            "A referenced record does not exist",
		"flash_unknown_form":         "Unknown form type",
		"flash_user_created":         "User created successfully",
		"flash_username_taken":       "Username already exists",
		"flash_user_forbidden":       "Only administrators can create users",
		"flash_contract_saved":       "Contract and deal recorded",
		"flash_documentation_saved":  "Documentation recorded",
		"flash_accountant_saved":     "Accountant added",
		"flash_profit_handler_saved": "Profit handler added",
		"flash_deal_saved":           "Deal added",
		"flash_deal_skipped":         "Deal added, %d profit handler id(s) not linked: %s",
		"flash_retailer_saved":       "Retailer added",
		"flash_retailer_linked":      "Retailer linked to deal",
		"flash_link_created":         "Profit handler linked to deal",
		"flash_link_exists":          "Profit handler was already linked to deal",
		"flash_password_saved":       "Password updated",
		"flash_password_current_bad": "Current password is incorrect",
		"flash_password_mismatch":    "Passwords do not match",
		"flash_password_too_short":   "New password must be at least 8 characters",
		"flash_manufacturer_unbound": "Your account is not linked to a manufacturer",
		"flash_retailer_unbound":     "Your account is not linked to a retailer",
	},
	"fr": {
		"required":      "Requis",
		"invalid_id":    "Doit être un nombre positif",
		"invalid_ids":   "Doit être une liste de nombres séparés par des virgules",
		"too_short":     "Trop court",
		"unknown_value": "Valeur inconnue",

		"nav_home":      "Accueil",
		"nav_login":     "Connexion",
		"nav_logout":    "Déconnexion",
		"nav_display":   "Vue du pipeline",
		"nav_dashboard": "Tableau de bord",
		"nav_password":  "Changer le mot de passe",
		"nav_users":     "Utilisateurs",
		"nav_add_user":  "Ajouter un utilisateur",
		"btn_submit":    "Envoyer",
		"forbidden":     "Accès refusé",
		"not_found":     "Introuvable",

		"flash_login_failed":         "Identifiant ou mot de passe invalide",
		"flash_logged_out":           "Vous êtes déconnecté",
		"flash_form_invalid":         "Veuillez corriger les champs en erreur",
		"flash_generic_error":        "Une erreur est survenue, veuillez réessayer",
		"flash_not_found":            "Un enregistrement référencé n'existe pas",
		"flash_unknown_form":         "Type de formulaire inconnu",
		"flash_user_created":         "Utilisateur créé",
		"flash_username_taken":       "Ce nom d'utilisateur existe déjà",
		"flash_user_forbidden":       "Seuls les administrateurs peuvent créer des utilisateurs",
		"flash_contract_saved":       "Contrat et affaire enregistrés",
		"flash_documentation_saved":  "Documentation enregistrée",
		"flash_accountant_saved":     "Comptable ajouté",
		"flash_profit_handler_saved": "Gestionnaire de profit ajouté",
		"flash_deal_saved":           "Affaire ajoutée",
		"flash_deal_skipped":         "Affaire ajoutée, %d identifiant(s) non lié(s) : %s",
		"flash_retailer_saved":       "Détaillant ajouté",
		"flash_retailer_linked":      "Détaillant lié à l'affaire",
		"flash_link_created":         "Gestionnaire de profit lié à l'affaire",
		"flash_link_exists":          "Le gestionnaire de profit était déjà lié",
		"flash_password_saved":       "Mot de passe mis à jour",
		"flash_password_current_bad": "Mot de passe actuel incorrect",
		"flash_password_mismatch":    "Les mots de passe ne correspondent pas",
		"flash_password_too_short":   "Le nouveau mot de passe doit contenir au moins 8 caractères",
		"flash_manufacturer_unbound": "Votre compte n'est lié à aucun fabricant",
		"flash_retailer_unbound":     "Votre compte n'est lié à aucun détaillant",
	},
}
