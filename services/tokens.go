package services

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var codecCache sync.Map // tokenizer.Encoding -> tokenizer.Codec

// CountPromptTokens estimates the prompt size reported on guide sections.
// Unknown or non-OpenAI models are counted with o200k_base; -1 means no codec
// could be loaded.
func CountPromptTokens(model, prompt string) int {
	codec, err := codecFor(model)
	if err != nil {
		return -1
	}
	ids, _, err := codec.Encode(prompt)
	if err != nil {
		return -1
	}
	return len(ids)
}

func codecFor(model string) (tokenizer.Codec, error) {
	enc := encodingFor(model)
	if c, ok := codecCache.Load(enc); ok {
		return c.(tokenizer.Codec), nil
	}
	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, err
	}
	codecCache.Store(enc, codec)
	return codec, nil
}

func encodingFor(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "gpt-4.1"),
		strings.HasPrefix(model, "gpt-5"), strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.Cl100kBase
	default:
		return tokenizer.O200kBase
	}
}
