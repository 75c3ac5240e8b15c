package i18n

import "golang.org/x/text/language"

var messages = map[language.Tag]map[string]string{
	language.English: {
		// validation
		"required":               "required",
		"string":                 "must be a string",
		"email":                  "must be a valid email",
		"integer":                "must be an integer",
		"in":                     "is invalid",
		"confirmed":              "confirmation does not match",
		"unique":                 "has already been taken",
		"min.string":             "must be at least %d characters",
		"max.string":             "must not be greater than %d characters",
		"max.bytes":              "must not be greater than %d bytes",
		"min.numeric":            "must be at least %d",
		"max.numeric":            "must not be greater than %d",
		"password.mixed":         "must contain at least one uppercase and one lowercase letter",
		"password.numbers":       "must contain at least one number",
		"password.symbols":       "must contain at least one symbol",
		"password.uncompromised": "has appeared in a data leak",
		"validation_failed":      "The given data was invalid.",
		"auth.failed":            "These credentials do not match our records.",
		"unauthenticated":        "Unauthenticated.",
		"forbidden":              "This action is unauthorized.",
		"not_found":              "Resource not found.",
		"users.fetched":          "Users fetched successfully",
		"user.fetched":           "User fetched successfully",
		"user.created":           "User created successfully",
		"user.updated":           "User updated successfully",
		"user.deleted":           "User deleted successfully",
		"user.restored":          "User restored successfully",
		"user.force_deleted":     "User permanently deleted",
		"auth.logged_in":         "Logged in successfully",
		"status.active":          "Active",
		"status.inactive":        "Inactive",
		"status.suspended":       "Suspended",
		"status.pending":         "Pending",
	},
	language.French: {
		"required":               "obligatoire",
		"string":                 "doit être une chaîne de caractères",
		"email":                  "doit être une adresse e-mail valide",
		"integer":                "doit être un entier",
		"in":                     "est invalide",
		"confirmed":              "la confirmation ne correspond pas",
		"unique":                 "est déjà utilisé",
		"min.string":             "doit contenir au moins %d caractères",
		"max.string":             "ne doit pas dépasser %d caractères",
		"max.bytes":              "ne doit pas dépasser %d octets",
		"min.numeric":            "doit être au moins %d",
		"max.numeric":            "ne doit pas être supérieur à %d",
		"password.mixed":         "doit contenir au moins une majuscule et une minuscule",
		"password.numbers":       "doit contenir au moins un chiffre",
		"password.symbols":       "doit contenir au moins un symbole",
		"password.uncompromised": "est apparu dans une fuite de données",
		"validation_failed":      "Les données fournies sont invalides.",
		"auth.failed":            "Ces identifiants ne correspondent à aucun compte.",
		"unauthenticated":        "Non authentifié.",
		"forbidden":              "Cette action n'est pas autorisée.",
		"not_found":              "Ressource introuvable.",
		"users.fetched":          "Utilisateurs récupérés avec succès",
		"user.fetched":           "Utilisateur récupéré avec succès",
		"user.created":           "Utilisateur créé avec succès",
		"user.updated":           "Utilisateur mis à jour avec succès",
		"user.deleted":           "Utilisateur supprimé avec succès",
		"user.restored":          "Utilisateur restauré avec succès",
		"user.force_deleted":     "Utilisateur supprimé définitivement",
		"auth.logged_in":         "Connexion réussie",
		"status.active":          "Actif",
		"status.inactive":        "Inactif",
		"status.suspended":       "Suspendu",
		"status.pending":         "En attente",
	},
}
