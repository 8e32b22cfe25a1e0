package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const DefaultSummarySystemPrompt = "You are a highly skilled summarization AI. Your primary goal is to create a single, comprehensive, and concise summary of a conversation. **The final summary MUST be a single, continuous paragraph without line breaks or bullet points.**"

// DefaultSummaryUserTemplate is rendered with previous_summary, has_previous
// and transcript. Keep the section tags inline so the blank lines survive.
const DefaultSummaryUserTemplate = `Please create a comprehensive summary of this conversation:

{{#previous_summary}}Previous summary: {{{previous_summary}}}{{/previous_summary}}

Current conversation:
{{{transcript}}}

Create a single paragraph summary that captures all the key points, topics discussed, and important details from {{#has_previous}}both the previous summary and {{/has_previous}}the current conversation.`

type Config struct {
	// Server
	Host string
	Port string
	Env  string

	// LLM
	LLMProvider       string
	LLMModel          string
	LLMTimeoutSeconds int

	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Azure OpenAI
	AzureOpenAIEndpoint string
	AzureOpenAIAPIKey   string

	// Gemini
	GeminiAPIKey string

	// Bedrock
	AWSRegion string

	// Prompts
	PromptsFile         string
	SummarySystemPrompt string
	SummaryUserTemplate string
}

type promptFile struct {
	SummarySystemPrompt string `toml:"summary_system_prompt"`
	SummaryUserTemplate string `toml:"summary_user_template"`
}

// Load reads .env (if any) and the process environment. API keys are
// optional here: a missing key fails each upstream call, not startup.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "5000"),
		Env:                 getEnvOrDefault("ENV", "development"),
		LLMProvider:         getEnvOrDefault("LLM_PROVIDER", "openai"),
		LLMModel:            os.Getenv("LLM_MODEL"),
		LLMTimeoutSeconds:   getEnvAsIntOrDefault("LLM_TIMEOUT_SECONDS", 50),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AzureOpenAIEndpoint: os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIAPIKey:   os.Getenv("AZURE_OPENAI_API_KEY"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		AWSRegion:           os.Getenv("AWS_REGION"),
		PromptsFile:         os.Getenv("PROMPTS_FILE"),
		SummarySystemPrompt: DefaultSummarySystemPrompt,
		SummaryUserTemplate: DefaultSummaryUserTemplate,
	}

	if cfg.PromptsFile != "" {
		if err := cfg.loadPrompts(cfg.PromptsFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Debug reports whether the server runs in development mode.
func (c *Config) Debug() bool {
	return c.Env == "development"
}

// LLMTimeout bounds one upstream call. It must stay under the server's
// 60s write timeout; zero or negative disables the bound.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *Config) loadPrompts(path string) error {
	var pf promptFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}
	if pf.SummarySystemPrompt != "" {
		c.SummarySystemPrompt = pf.SummarySystemPrompt
	}
	if pf.SummaryUserTemplate != "" {
		c.SummaryUserTemplate = pf.SummaryUserTemplate
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
