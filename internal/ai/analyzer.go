package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/pkg/circuitbreaker"
	"github.com/incident-watch/backend/pkg/logger"
	"github.com/incident-watch/backend/pkg/retry"
)

// maxContentChars bounds how much article body is sent to the oracle.
const maxContentChars = 2000

const systemPrompt = "Eres un asistente experto en análisis de noticias de seguridad y eventos " +
	"de alto impacto en Monterrey, Nuevo León, México. Respondes siempre en formato JSON válido."

const analysisPromptTemplate = `Analiza la siguiente noticia y proporciona un análisis detallado en formato JSON.

TÍTULO: %s

CONTENIDO: %s

Debes analizar y responder con un JSON que contenga:

1. "is_relevant" (boolean): ¿Es un evento de alto impacto ACTUAL en Monterrey y área metropolitana?
   - SÍ si es: accidente vial, incendio, balacera, bloqueo, desastre natural
   - NO si es: noticia histórica, espectáculos, política general, ubicación lejana

2. "category" (string): "accidente_vial", "incendio", "seguridad", "bloqueo", "desastre_natural" o "no_relevante"

3. "severity" (integer 1-10): gravedad del evento
   - 1-3: incidente menor (sin heridos, daños leves)
   - 4-6: incidente moderado (heridos leves, tráfico afectado)
   - 7-8: incidente grave (heridos graves, múltiples vehículos, fuego)
   - 9-10: emergencia crítica (víctimas fatales, peligro inminente)

4. "location" (object): {"extracted": string, "normalized": string, "confidence": float 0-1, "is_specific": boolean}

5. "summary" (string): resumen conciso del evento (máximo 100 caracteres)

6. "details" (object): {"victims": integer, "traffic_impact": "none"|"low"|"medium"|"high", "emergency_services": boolean, "time_reference": "current"|"recent"|"past"|"future"}

7. "exclusion_reason" (string o null): si no es relevante, razón de exclusión

IMPORTANTE:
- Si la noticia menciona "hace años", "en el pasado", "aniversario" → is_relevant: false
- Si habla de espectáculos, actores, celebridades → is_relevant: false
- Si la ubicación es muy genérica como solo "Monterrey" → location.is_specific: false
- Si la ubicación está fuera del área metropolitana (Pesquería, Cadereyta, Santiago) → is_relevant: false

Responde SOLO con el JSON, sin texto adicional.`

// Analyzer sends title and content to the text-classification oracle and
// returns its structured judgment. Any transport or parse failure yields
// nil so callers degrade to the lexical path.
type Analyzer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewAnalyzer(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Analyzer {
	cb := circuitbreaker.New("ai-analyzer", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    2,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	if timeoutSec <= 0 {
		timeoutSec = 15
	}

	logger.Info("AI analyzer initialized", zap.String("model", model))

	return &Analyzer{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// Analyze runs the full enrichment prompt for one item. Content beyond
// maxContentChars is not sent.
func (a *Analyzer) Analyze(ctx context.Context, title, content string) *model.AIAnalysis {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	content = truncateUTF8(content, maxContentChars)

	userPrompt := fmt.Sprintf(analysisPromptTemplate, title, content)

	var raw string
	err := a.cb.Execute(ctx, func() error {
		return retry.Do(ctx, a.retryConfig, func() error {
			resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: a.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
					{Role: openai.ChatMessageRoleUser, Content: userPrompt},
				},
				Temperature: a.temperature,
				MaxTokens:   a.maxTokens,
				ResponseFormat: &openai.ChatCompletionResponseFormat{
					Type: openai.ChatCompletionResponseFormatTypeJSONObject,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("AI analysis completed",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			raw = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		logger.Warn("AI analysis failed", zap.Error(err))
		return nil
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		logger.Warn("AI response unparseable", zap.Error(err))
		return nil
	}

	return analysis
}

// truncateUTF8 caps s at max bytes, backing up so a multi-byte rune is
// never split. Spanish article text makes mid-rune cuts a certainty
// otherwise.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ParseAnalysis decodes the oracle's JSON judgment. A malformed response
// is a hard failure for that call only.
func ParseAnalysis(raw string) (*model.AIAnalysis, error) {
	var analysis model.AIAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}

	if analysis.Severity < 1 || analysis.Severity > 10 {
		analysis.Severity = 5
	}
	if analysis.Category == "" {
		analysis.Category = model.CategoryNone
	}

	return &analysis, nil
}
