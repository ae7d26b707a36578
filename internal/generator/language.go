package generator

// Arabic script ranges recognized by the detector.
var arabicRanges = [][2]rune{
	{0x0600, 0x06FF},
	{0x0750, 0x077F},
	{0x08A0, 0x08FF},
	{0xFB50, 0xFDFF},
	{0xFE70, 0xFEFF},
}

// DetectLanguage classifies the prompt as "ar" when it contains any character
// in the Arabic script ranges, and "en" otherwise. This is a presence test,
// not a general language detector.
func DetectLanguage(prompt string) string {
	for _, r := range prompt {
		for _, rng := range arabicRanges {
			if r >= rng[0] && r <= rng[1] {
				return "ar"
			}
		}
	}
	return "en"
}
