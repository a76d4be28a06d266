package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Topic names one LLM-templated guide.
type Topic string

const (
	TopicTransport     Topic = "transport"
	TopicEmergency     Topic = "emergency"
	TopicAccommodation Topic = "accommodation"
	TopicShopping      Topic = "shopping"
	TopicPacking       Topic = "packing"
	TopicPhrases       Topic = "phrases"
)

// Topics lists every guide topic.
var Topics = []Topic{TopicTransport, TopicEmergency, TopicAccommodation, TopicShopping, TopicPacking, TopicPhrases}

// promptTemplates use {destination}, {num_days} and {budget} placeholders.
var promptTemplates = map[Topic]string{
	TopicTransport:     "Provide public transport and taxi options in {destination}.",
	TopicEmergency:     "List emergency contacts (hospitals, embassies, police) in {destination}.",
	TopicAccommodation: "List best {budget}-budget hotels and stays in {destination}.",
	TopicShopping:      "Provide famous shopping places and souvenirs in {destination}.",
	TopicPacking:       "Generate a packing list for a {num_days}-day trip to {destination} considering weather and activities.",
	TopicPhrases:       "Provide essential travel phrases in the local language of {destination}.",
}

// GuideInput is what a guide template may reference.
type GuideInput struct {
	Destination string
	NumDays     int
	Budget      string
}

// RenderPrompt fills topic's template. ok is false for an unknown topic.
func RenderPrompt(topic Topic, in GuideInput) (string, bool) {
	tmpl, ok := promptTemplates[topic]
	if !ok {
		return "", false
	}
	r := strings.NewReplacer(
		"{destination}", in.Destination,
		"{num_days}", strconv.Itoa(in.NumDays),
		"{budget}", in.Budget,
	)
	return r.Replace(tmpl), true
}

// GuideClient answers guide topics with one completion each.
type GuideClient struct {
	completer Completer
	models    map[Topic]string
}

// NewGuideClient takes the model per topic; modelFor is called once per topic.
func NewGuideClient(completer Completer, modelFor func(Topic) string) *GuideClient {
	models := make(map[Topic]string, len(Topics))
	for _, t := range Topics {
		models[t] = modelFor(t)
	}
	return &GuideClient{completer: completer, models: models}
}

// Model returns the model configured for topic.
func (c *GuideClient) Model(topic Topic) string {
	return c.models[topic]
}

// FetchGuide returns the model's raw text for topic, unparsed. The result carries
// the prompt's token count whether or not the completion succeeded.
func (c *GuideClient) FetchGuide(ctx context.Context, topic Topic, in GuideInput) Result {
	prompt, ok := RenderPrompt(topic, in)
	if !ok {
		return Failed(InvalidInput, "unknown guide topic "+string(topic))
	}
	model := c.Model(topic)

	res := c.complete(ctx, model, prompt)
	if n := CountPromptTokens(model, prompt); n > 0 {
		res.PromptTokens = n
	}
	return res
}

func (c *GuideClient) complete(ctx context.Context, model, prompt string) Result {
	text, err := c.completer.Complete(ctx, model, prompt)
	if err != nil {
		var typed *Error
		if errors.As(err, &typed) {
			return Failed(typed.Kind, typed.Detail)
		}
		return unavailable("completion", err)
	}
	if strings.TrimSpace(text) == "" {
		return Failed(NoResults, "the model returned an empty answer")
	}
	return Ok(text)
}
