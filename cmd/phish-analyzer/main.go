package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/config"
	"github.com/mikey/phishscope/internal/core"
	"github.com/mikey/phishscope/internal/factory"
	"github.com/mikey/phishscope/internal/logging"
	"github.com/mikey/phishscope/internal/utils"
	"github.com/mikey/phishscope/internal/whitelist"
)

var (
	// LLM provider flags
	provider    = flag.String("provider", "ollama", "LLM provider (ollama, bedrock, gemini, openai)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to the agents")

	// Ollama flags
	ollamaURL   = flag.String("ollama-url", "http://localhost:11434", "Base URL of the Ollama server")
	ollamaModel = flag.String("ollama-model", "llama3", "Ollama model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Analysis flags
	whitelistDomains = flag.String("whitelist", "", "Comma-separated list of whitelisted sender domains")
	urlList          = flag.String("urls", "", "Comma-separated URLs to analyze (extracted from the body if omitted)")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	jsonOut    = flag.Bool("json", false, "Print the unified result as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Initialize backend and agents
	backendFactory := factory.NewBackendFactory(cfg, logger)
	backend, err := backendFactory.CreateBackend()
	if err != nil {
		logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	textAgent, err := core.NewTextAgent(backend, logger)
	if err != nil {
		logger.Fatal("Failed to create text agent", zap.Error(err))
	}
	urlAgent, err := core.NewURLAgent(backend, logger)
	if err != nil {
		logger.Fatal("Failed to create URL agent", zap.Error(err))
	}
	service := core.NewAnalyzerService(textAgent, urlAgent, nil, logger)

	// Parse whitelisted domains
	var whitelistedDomains []string
	if *whitelistDomains != "" {
		whitelistedDomains = strings.Split(*whitelistDomains, ",")
		for i, domain := range whitelistedDomains {
			whitelistedDomains[i] = strings.TrimSpace(domain)
		}
	} else {
		whitelistedDomains = cfg.GetStringSlice("analysis.whitelisted_domains")
	}
	whitelistChecker := whitelist.NewChecker(whitelistedDomains, logger)

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	from := msg.Header.Get("From")
	subject := msg.Header.Get("Subject")

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}
	body := string(bodyBytes)

	// Collect URLs: explicit flag wins, otherwise extract from the text
	var urls []string
	if *urlList != "" {
		for _, u := range strings.Split(*urlList, ",") {
			urls = append(urls, strings.TrimSpace(u))
		}
	} else {
		urls = utils.ExtractURLs(subject + "\n\n" + body)
	}

	textProcessor := utils.NewTextProcessor(logger)
	email := &core.Email{
		From:    from,
		Subject: subject,
		Body:    textProcessor.ProcessText(body, cfg.GetInt("analysis.max_body_size")),
		URLs:    urls,
		Headers: map[string][]string(msg.Header),
	}

	if whitelistChecker.IsWhitelisted(from) {
		fmt.Printf("Sender domain is whitelisted; analysis skipped\n")
		return
	}

	startTime := time.Now()
	result, err := service.AnalyzeEmail(context.Background(), email)
	if result == nil && err != nil {
		logger.Fatal("Failed to analyze email", zap.Error(err))
	}
	duration := time.Since(startTime)

	if err != nil {
		logger.Warn("URL analysis failed, verdict is text-only", zap.Error(err))
	}

	if *jsonOut {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("Failed to encode result", zap.Error(err))
		}
		fmt.Println(string(encoded))
		return
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Verdict: %s\n", result.Verdict)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	fmt.Printf("Agents used: text=%t url=%t\n",
		result.AgentsUsed[core.ViewText], result.AgentsUsed[core.ViewURL])
	if len(result.PhishingIndicators) > 0 {
		fmt.Printf("Phishing indicators: %s\n", strings.Join(result.PhishingIndicators, ", "))
	}
	if len(result.LegitimacyIndicators) > 0 {
		fmt.Printf("Legitimacy indicators: %s\n", strings.Join(result.LegitimacyIndicators, ", "))
	}
	fmt.Printf("Rationale: %s\n", result.OverallRationale)
	fmt.Printf("Processing time: %v\n", duration)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("llm.provider", *provider)

	switch *provider {
	case "ollama":
		v.Set("ollama.base_url", *ollamaURL)
		v.Set("ollama.model", *ollamaModel)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
	}

	v.Set("analysis.max_body_size", *maxBodySize)

	if *whitelistDomains != "" {
		domains := strings.Split(*whitelistDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("analysis.whitelisted_domains", domains)
	}

	return config.NewFromViper(v)
}
