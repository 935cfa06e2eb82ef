package gemini

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var (
	errNilResponse   = errors.New("nil response")
	errEmptyResponse = errors.New("response carried no text")
)

// textSource extracts text from one response shape. An empty string means the
// shape did not yield anything.
type textSource func(*genai.GenerateContentResponse) string

// textSources are tried in order; the first non-empty result wins.
var textSources = []textSource{
	directText,
	candidateText,
}

// ExtractText normalizes a completion response into its text. Blocked
// prompts and responses without text are errors.
func ExtractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errNilResponse
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			reason = fb.BlockReasonMessage
		}
		return "", fmt.Errorf("prompt blocked: %s", reason)
	}

	for _, src := range textSources {
		if text := strings.TrimSpace(src(resp)); text != "" {
			return text, nil
		}
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		if fr := resp.Candidates[0].FinishReason; fr != "" && fr != genai.FinishReasonStop && fr != genai.FinishReasonUnspecified {
			return "", fmt.Errorf("%w, finish reason: %s", errEmptyResponse, fr)
		}
	}
	return "", errEmptyResponse
}

// directText is the SDK's own accessor, which reads the first candidate.
func directText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return resp.Text()
}

// candidateText walks every candidate and returns the joined non-thought
// parts of the first one that has any.
func candidateText(resp *genai.GenerateContentResponse) string {
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			sb.WriteString(p.Text)
		}
		if strings.TrimSpace(sb.String()) != "" {
			return sb.String()
		}
	}
	return ""
}
