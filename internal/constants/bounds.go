package constants

// Operator bounds for relative windows and leaderboards.
const (
	MaxWeeks           = 52
	MaxMonths          = 24
	DefaultPeriodCount = 12

	MinRankingLimit     = 1
	MaxRankingLimit     = 100
	DefaultRankingLimit = 10
)

const (
	// AnonPrefix prefixes the masked display name of users without a nickname.
	AnonPrefix = "anon-"
	// AnonPlaceholder is shown when the identifier is too short to mask.
	AnonPlaceholder = "anon-****"
	// AnonSuffixLen is how many trailing identifier characters the mask keeps.
	AnonSuffixLen = 4

	NicknameMinLen = 2
	NicknameMaxLen = 16
	// NicknamePattern allows Hangul, ASCII letters, digits and underscore.
	NicknamePattern = `^[A-Za-z0-9가-힣_]{2,16}$`
	NicknameTagMax  = 9999
)
