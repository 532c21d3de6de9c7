package storage

// Logical collection names. Each user's data lives under "<userID>:<name>".
const (
	KeyMeals     = "nutriai_data"
	KeySettings  = "nutriai_settings"
	KeyPlans     = "meal-plans"
	KeyTemplates = "meal-plan-templates"
	KeyPantry    = "user-pantry"
)

func UserKey(userID, name string) string {
	return userID + ":" + name
}
