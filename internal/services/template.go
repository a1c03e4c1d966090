package services

import (
	"fmt"
	"strings"
)

// Template generators are pure lookups: a selector maps to a fixed
// natural-language instruction payload for the completion API. Unknown
// selectors fall back to the documented default rather than erroring.
// Whether that permissiveness is intentional product design is an open
// question; keep it until product says otherwise.

// Default selectors for the three generator families.
const (
	DefaultEnhanceType     = "clarity"
	DefaultGenerationStyle = "instructive"
	DefaultPromptType      = "general"
)

// enhancementGuides map an enhancement type to the guidance appended when
// enhancing a user's prompt.
var enhancementGuides = map[string]string{
	"clarity": "Rewrite the prompt so every instruction is unambiguous. " +
		"Replace vague verbs with specific ones, state the expected output format explicitly, " +
		"and remove any wording a model could interpret in more than one way.",
	"examples": "Strengthen the prompt by adding two or three short input/output examples " +
		"that demonstrate the desired behavior, including at least one edge case.",
	"structure": "Restructure the prompt into clearly labeled sections: role, task, " +
		"constraints, and output format. Use numbered steps where the task has an order.",
	"detail": "Expand the prompt with the context a model would otherwise have to guess: " +
		"audience, tone, length bounds, and what to do when required information is missing.",
	"best-practice": "Apply prompt-engineering best practices: put the role first, " +
		"state constraints before the task, prefer positive instructions over prohibitions, " +
		"and end with the output format specification.",
}

// EnhancementGuide returns the guide text for an enhancement type, falling
// back to the clarity guide for unknown types.
func EnhancementGuide(enhanceType string) (string, string) {
	key := strings.ToLower(strings.TrimSpace(enhanceType))
	if guide, ok := enhancementGuides[key]; ok {
		return guide, key
	}
	return enhancementGuides[DefaultEnhanceType], DefaultEnhanceType
}

// BuildEnhancement wraps a user prompt with the guide for the requested
// enhancement type.
func BuildEnhancement(prompt, enhanceType string) (enhanced, guide, applied string) {
	guide, applied = EnhancementGuide(enhanceType)
	enhanced = fmt.Sprintf("%s\n\n---\nEnhancement applied (%s): %s", strings.TrimSpace(prompt), applied, guide)
	return enhanced, guide, applied
}

// generationTemplates map a style to a template with {{topic}} and
// {{useCase}} placeholders.
var generationTemplates = map[string]string{
	"instructive": "Write a detailed response about {{topic}}. " +
		"Be specific, factual and well organized.{{useCase}}",
	"role-based": "You are an expert in {{topic}} with years of hands-on experience. " +
		"Share your deepest practical insights on the subject.{{useCase}}",
	"chain-of-thought": "Think through {{topic}} step by step. " +
		"Lay out your reasoning explicitly before stating any conclusion.{{useCase}}",
	"few-shot": "Here are examples of excellent answers about topics like {{topic}}. " +
		"Study the pattern, then produce an answer of the same quality for {{topic}}.{{useCase}}",
	"structured": "Produce a structured analysis of {{topic}} with these sections: " +
		"Overview, Key Points, Practical Applications, and Summary.{{useCase}}",
}

// GenerationTemplate builds a prompt for a topic in the requested style,
// falling back to the instructive style for unknown styles.
func GenerationTemplate(style, topic, useCase string) (text, applied string) {
	key := strings.ToLower(strings.TrimSpace(style))
	tmpl, ok := generationTemplates[key]
	if !ok {
		tmpl = generationTemplates[DefaultGenerationStyle]
		key = DefaultGenerationStyle
	}

	useCaseClause := ""
	if strings.TrimSpace(useCase) != "" {
		useCaseClause = fmt.Sprintf(" Tailor the result for this use case: %s.", strings.TrimSpace(useCase))
	}

	text = strings.ReplaceAll(tmpl, "{{topic}}", strings.TrimSpace(topic))
	text = strings.ReplaceAll(text, "{{useCase}}", useCaseClause)
	return text, key
}

// improveSystemPrompts map a prompt type to the system prompt used when
// asking the completion API to improve user input.
var improveSystemPrompts = map[string]string{
	"general": "You are a prompt engineering expert. Improve the user's prompt: " +
		"make it clearer, more specific, and more likely to produce a high-quality response. " +
		"Return only the improved prompt.",
	"coding": "You are a prompt engineering expert for software tasks. Improve the user's prompt " +
		"for a coding assistant: pin down language, constraints, expected inputs and outputs, " +
		"and error handling expectations. Return only the improved prompt.",
	"writing": "You are a prompt engineering expert for writing tasks. Improve the user's prompt: " +
		"specify audience, tone, structure and length. Return only the improved prompt.",
	"analysis": "You are a prompt engineering expert for analytical tasks. Improve the user's prompt: " +
		"define the data or material to analyze, the analytical method, and the form of the findings. " +
		"Return only the improved prompt.",
}

const improveProSuffix = " Additionally apply advanced techniques where they help: " +
	"assign the model a role, request step-by-step reasoning for complex parts, " +
	"and add a short example if the task benefits from one."

// ImproveSystemPrompt returns the system prompt for the improve endpoint,
// falling back to the general prompt for unknown types. Pro members get
// the extended variant.
func ImproveSystemPrompt(promptType string, pro bool) (text, applied string) {
	key := strings.ToLower(strings.TrimSpace(promptType))
	sys, ok := improveSystemPrompts[key]
	if !ok {
		sys = improveSystemPrompts[DefaultPromptType]
		key = DefaultPromptType
	}
	if pro {
		sys += improveProSuffix
	}
	return sys, key
}
