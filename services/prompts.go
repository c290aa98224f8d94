package services

import (
	"fmt"
	"regexp"
	"strings"

	"linkedin-content-platform/models"
)

// Prompt builders for the three model collaborators. Kept together so the
// content contract is visible in one place.

var aiToolRe = regexp.MustCompile(`(?i)\b(ChatGPT|GPT-4|GPT-3|GPT|Claude|Grok|Gemini|Copilot|Perplexity|Bard|LLM|Llama|Mistral|AI assistant|AI chatbot)\b`)

func sourceLabel(platform models.Platform) string {
	if platform == models.PlatformTwitter {
		return "tweet text"
	}
	return "YouTube transcript"
}

func summaryPrompt(platform models.Platform, content string) string {
	return fmt.Sprintf(
		"Summarize this %s into a structured guide with Title, Key Points, and Workflow. Return plain text.\n\nCONTENT:\n%s",
		sourceLabel(platform), content)
}

func briefPrompt(style models.Style, summary string) string {
	if style == models.StyleSoulprint {
		summary = aiToolRe.ReplaceAllString(summary, "SoulPrint")
		return fmt.Sprintf(`Create an infographic design brief for LinkedIn (16:9) from this summary.

MANDATORY BRANDING - SOULPRINT:
- COLOR SCHEME: BLACK background (#000000) with BURNT ORANGE (#CC5500) accents ONLY
- Replace ANY AI tool names with "SoulPrint"
- White or light gray (#EEEEEE) for main body text
- Modern, minimalist, sleek, professional

Focus on visual hierarchy. Plain text brief only.

SUMMARY:
%s`, summary)
	}
	return fmt.Sprintf(
		"Create an infographic design brief for LinkedIn (16:9) from this summary. Focus on visual hierarchy. Plain text.\n\nSUMMARY:\n%s",
		summary)
}

// styledBrief prepends hard palette constraints for branded clients before
// the brief goes to the image generator.
func styledBrief(style models.Style, brief string) string {
	if style != models.StyleSoulprint {
		return brief
	}
	return `STRICT COLOR PALETTE - DO NOT DEVIATE:
- Background: Pure BLACK (#000000)
- Accent color: BURNT ORANGE (#CC5500)
- Text: WHITE or light gray
- NO other colors allowed.

Do NOT include any logo or branding text in the image.

` + brief
}

func copyPrompt(style models.Style, platform models.Platform, v Variation, content string) string {
	var b strings.Builder
	b.WriteString("Write a LinkedIn post in this style and structure:\n\n")
	b.WriteString("**HOOK (First 1-2 lines):**\n" + v.HookPrompt + "\n")
	b.WriteString("- Include specific numbers when possible (hours, weeks, percentages)\n\n")
	b.WriteString("**TRANSITION (Line 3-4):**\n")
	b.WriteString("- One sentence explaining WHY this matters\n\n")
	b.WriteString("**MAIN VALUE SECTION:**\n" + v.StructurePrompt + "\n")
	b.WriteString("- Include 5-8 specific use cases, tips, or insights\n")
	b.WriteString("- Make each point actionable and concrete\n\n")
	b.WriteString("**CLOSER:**\n" + v.CloserPrompt + "\n\n")
	b.WriteString("**CTA (Final line):**\n" + v.CTAPrompt + "\n\n")
	b.WriteString("**CRITICAL RULES:**\n")
	b.WriteString("- NO hashtags anywhere\n- NO emojis\n")
	b.WriteString("- Keep paragraphs short (1-2 sentences max)\n")
	b.WriteString("- First person perspective, confident direct tone\n")
	if style == models.StyleSoulprint {
		b.WriteString("\nReplace ANY mention of AI tools with \"SoulPrint\".\n")
	}
	label := "transcript"
	if platform == models.PlatformTwitter {
		label = "tweet"
	}
	fmt.Fprintf(&b, "\nCONTENT (%s):\n%s\n\nWrite the post now. Return ONLY the post text, nothing else.", label, content)
	return b.String()
}
