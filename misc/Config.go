package misc

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// configDefault defines a single known config key.
type configDefault struct {
	Key      string
	Value    string
	Required bool   // if true, value must be supplied by the environment
	Label    string // user-friendly display name (used in error messages)
}

// allDefaults lists every known config key with its default value.
// Required entries have empty Value and Required=true — startup refuses to
// proceed until the environment provides them.
var allDefaults = []configDefault{
	{Key: "BOT_TOKEN", Value: "", Required: true, Label: "Telegram bot token (BOT_TOKEN)"},
	{Key: "GEMINI_API_KEY", Value: "", Required: true, Label: "Gemini API key (GEMINI_API_KEY)"},
	{Key: "WEBHOOK_URL", Value: "", Label: "Public webhook base URL (WEBHOOK_URL)"},
	{Key: "PORT", Value: "5000"},
	{Key: "DATA_DIR", Value: "./data"},
	{Key: "HISTORY_BACKEND", Value: "sqlite"},
	{Key: "BASE_URL", Value: "https://generativelanguage.googleapis.com/v1beta"},
	{Key: "TEXT_MODEL", Value: "gemini-1.5-flash"},
	{Key: "VISION_MODEL", Value: "gemini-1.5-flash"},
	{Key: "IMAGE_MODEL", Value: "gemini-1.5-flash"},
	{Key: "GROUNDING", Value: "false"},
	{Key: "MaxTryCount", Value: "3"},
	{Key: "MaxRequest", Value: "3"},
	{Key: "RequestTimeout", Value: "60"},
	{Key: "RetryAllErrors", Value: "true"},
	{Key: "MaxContext", Value: "32"},
	{Key: "MessageMaximum", Value: "10240"},
	{Key: "DEBUG", Value: "false"},
}

// GetConfigValueRequired reads a config value from the environment.
// It aborts the process if the value is empty or missing.
func GetConfigValueRequired(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		log.Fatal(fmt.Sprintf("config value is empty: %s — set it in the environment", key))
	}
	return value
}

// GetConfigValueDefault reads a config value from the environment.
// Returns defaultValue if the key is missing or empty.
func GetConfigValueDefault(key string, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// CheckRequiredConfig returns a list of missing required config entries.
// Returns nil if all required config is set.
func CheckRequiredConfig() []string {
	var missing []string
	for _, d := range allDefaults {
		if !d.Required {
			continue
		}
		if strings.TrimSpace(os.Getenv(d.Key)) == "" {
			if d.Label != "" {
				missing = append(missing, d.Label)
			} else {
				missing = append(missing, d.Key)
			}
		}
	}
	return missing
}

func GetBotToken() string {
	return GetConfigValueRequired("BOT_TOKEN")
}

func GetGeminiAPIKey() string {
	return GetConfigValueRequired("GEMINI_API_KEY")
}

func GetWebhookURL() string {
	return GetConfigValueDefault("WEBHOOK_URL", "")
}

func GetPort() string {
	return GetConfigValueDefault("PORT", "5000")
}

func GetDataDir() string {
	dir, _ := filepath.Abs(GetConfigValueDefault("DATA_DIR", "./data"))
	return dir
}

func GetHistoryBackend() string {
	return strings.ToLower(GetConfigValueDefault("HISTORY_BACKEND", "sqlite"))
}

func GetBaseURL() string {
	return strings.TrimRight(GetConfigValueDefault("BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/")
}

func GetTextModel() string {
	return GetConfigValueDefault("TEXT_MODEL", "gemini-1.5-flash")
}

func GetVisionModel() string {
	return GetConfigValueDefault("VISION_MODEL", "gemini-1.5-flash")
}

func GetImageModel() string {
	return GetConfigValueDefault("IMAGE_MODEL", "gemini-1.5-flash")
}

// GetGroundingEnabled reports whether Google Search grounding should be
// requested on plain chat relays.
func GetGroundingEnabled() bool {
	v := GetConfigValueDefault("GROUNDING", "false")
	return strings.EqualFold(v, "true") || v == "1"
}

// GetMaxTryCount returns the total upstream attempt budget (initial + retries).
func GetMaxTryCount() int {
	num := GetConfigValueDefault("MaxTryCount", "3")
	result, err := strconv.Atoi(num)
	if err != nil || result < 1 {
		return 3
	}
	return result
}

// GetMaxRequest returns the maximum number of concurrent upstream calls.
func GetMaxRequest() int {
	num := GetConfigValueDefault("MaxRequest", "3")
	result, err := strconv.Atoi(num)
	if err != nil || result < 1 {
		return 3
	}
	return result
}

// GetRequestTimeout returns the per-attempt upstream timeout in seconds.
func GetRequestTimeout() int {
	num := GetConfigValueDefault("RequestTimeout", "60")
	result, err := strconv.Atoi(num)
	if err != nil || result < 1 {
		return 60
	}
	return result
}

// GetRetryAllErrors reports whether non-429 upstream failures are retried
// with the same backoff as rate limiting. Set RetryAllErrors=false to make
// such failures immediately terminal.
func GetRetryAllErrors() bool {
	v := GetConfigValueDefault("RetryAllErrors", "true")
	return !strings.EqualFold(v, "false") && v != "0"
}

// GetMaxContext returns the maximum replayed-history size in tokens.
// MaxContext is configured in KB of tokens. Default is 32 (KB) = 32768 tokens.
func GetMaxContext() int {
	num := GetConfigValueDefault("MaxContext", "32")
	kb, err := strconv.Atoi(num)
	if err != nil || kb < 1 {
		kb = 32
	}
	return kb * 1024
}

func GetMessageMaximum() int {
	num := GetConfigValueDefault("MessageMaximum", "10240")
	result, err := strconv.Atoi(num)
	if err != nil || result < 1 {
		return 10240
	}
	return result
}

// CreateDirIfNotExists creates the directory (and parents) when missing.
func CreateDirIfNotExists(dir string) error {
	return os.MkdirAll(dir, 0755)
}
