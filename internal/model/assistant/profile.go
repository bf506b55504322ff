package assistant

// Profile holds the copy the frontends show around the conversation.
type Profile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BotName     string   `json:"botName"`
	Welcome     string   `json:"welcome"`
	ErrorText   string   `json:"errorText"`
	Placeholder string   `json:"placeholder"`
	Status      string   `json:"status"`
	Disclaimer  string   `json:"disclaimer"`
	Badges      []string `json:"badges"`
	MaxInput    int      `json:"maxInput"`
}

const (
	DefaultName        = "Medical AI Assistant"
	DefaultDescription = "Profesyonel tıbbi AI asistanınız. Sağlık sorularınızı sorun, tıbbi bilgi alın."
	DefaultMaxInput    = 1000

	WelcomeText     = "Merhaba! Ben Medical AI Asistanınızım. Size nasıl yardımcı olabilirim? Tıbbi sorularınızı sorabilir, sağlık konularında bilgi alabilirsiniz."
	ErrorText       = "Üzgünüm, şu anda bir hata oluştu. Lütfen daha sonra tekrar deneyin."
	PlaceholderText = "Tıbbi sorunuzu yazın..."
	StatusText      = "Online - Size nasıl yardımcı olabilirim?"
	DisclaimerText  = "⚠️ Bu AI asistan sadece bilgi amaçlıdır. Acil durumlar için mutlaka bir sağlık uzmanına başvurun."
)

// Seed returns the profile with the stock copy. Empty name, description or a
// non-positive input limit fall back to the defaults.
func Seed(name, description string, maxInput int) Profile {
	if name == "" {
		name = DefaultName
	}
	if description == "" {
		description = DefaultDescription
	}
	if maxInput <= 0 {
		maxInput = DefaultMaxInput
	}

	return Profile{
		Name:        name,
		Description: description,
		BotName:     "Medical AI",
		Welcome:     WelcomeText,
		ErrorText:   ErrorText,
		Placeholder: PlaceholderText,
		Status:      StatusText,
		Disclaimer:  DisclaimerText,
		Badges:      []string{"Secure", "24/7 Active", "Reliable"},
		MaxInput:    maxInput,
	}
}
