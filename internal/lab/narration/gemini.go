package narration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Gemini text-to-speech defaults.
const (
	DefaultGeminiModel = "gemini-2.5-flash-preview-tts"
	DefaultGeminiVoice = "Kore"

	defaultSampleRate = 24000
	bytesPerSample    = 2 // 16-bit mono PCM
)

var errNoAudio = errors.New("gemini response contained no audio")

// contentGenerator is the part of *genai.Models the narrator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig selects the TTS model and voice.
type GeminiConfig struct {
	APIKey string
	Model  string
	Voice  string
}

// Gemini speaks through Google's Gemini TTS models and returns WAV audio.
type Gemini struct {
	models contentGenerator
	model  string
	voice  string
}

// NewGemini creates a Gemini API client for cfg.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(client.Models, cfg), nil
}

func newGemini(models contentGenerator, cfg GeminiConfig) *Gemini {
	g := &Gemini{models: models, model: cfg.Model, voice: cfg.Voice}
	if g.model == "" {
		g.model = DefaultGeminiModel
	}
	if g.voice == "" {
		g.voice = DefaultGeminiVoice
	}
	return g
}

// Speak synthesises text and returns it as a WAV clip.
func (g *Gemini) Speak(ctx context.Context, text string) (Clip, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	})
	if err != nil {
		return Clip{}, fmt.Errorf("gemini generate speech: %w", err)
	}

	pcm, mime := firstAudio(resp)
	if len(pcm) == 0 {
		return Clip{}, errNoAudio
	}
	rate := sampleRate(mime)

	return Clip{
		Text:     text,
		Audio:    encodeWAV(pcm, rate),
		MIMEType: "audio/wav",
		Duration: pcmDuration(len(pcm), rate),
	}, nil
}

func firstAudio(resp *genai.GenerateContentResponse) ([]byte, string) {
	if resp == nil {
		return nil, ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, part.InlineData.MIMEType
			}
		}
	}
	return nil, ""
}

// sampleRate reads "rate=" from a MIME type such as "audio/L16;codec=pcm;rate=24000".
func sampleRate(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || k != "rate" {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultSampleRate
}

func pcmDuration(n, rate int) time.Duration {
	samples := n / bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(rate)
}
