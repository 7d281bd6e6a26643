package aura

import "strings"

const (
	promptHead = "Create a high-fidelity, circular aura image that exudes a sense of energy and "
	promptTail = ". " +
		"The aura should be a gradient, using only various shades of random color that seamlessly blend into one another. " +
		"Start with a light, pastel shade of random color at the outermost edge, gradually transitioning to a vibrant, mid-tone shade in the middle, " +
		"and finally, a deep, rich shade of random color at the innermost part of the circle. " +
		"The transition between the shades should be smooth and refined, creating a polished, high-quality finish. " +
		"The image should be centered on a black background to make the random color tones pop and to add depth and contrast to the overall composition."
)

// BuildPrompt places description verbatim inside the aura template.
func BuildPrompt(description string) string {
	var b strings.Builder
	b.Grow(len(promptHead) + len(description) + len(promptTail))
	b.WriteString(promptHead)
	b.WriteString(description)
	b.WriteString(promptTail)
	return b.String()
}
