package prompt

import "strings"

// NoImageDiagnosis is returned without invoking the vision model when
// the caller submitted no image.
const NoImageDiagnosis = "No image provided for me to analyze."

// systemPrompt keeps the reply in a doctor's register: one concise
// paragraph, no markdown, max two sentences, no AI framing.
const systemPrompt = `You have to act as a professional doctor, i know you are not but this is for learning purpose.
        What's in this image?. Do you find anything wrong with it medically?
        If you make a differential, suggest some remedies for them. Donot add any numbers or special characters in
        your response. Your response should be in one long paragraph. Also always answer as if you are answering to a real person.
        Donot say 'In the image I see' but say 'With what I see and hear, I think you have ....'
        Dont respond as an AI model in markdown, your answer should mimic that of an actual doctor not an AI bot,
        Keep your answer concise (max 2 sentences). No preamble, start your answer right away please`

// BuildQuery concatenates the fixed instruction, the optional symptom
// tag and the transcript into the vision-model prompt.
func BuildQuery(symptom, transcript string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	if s := strings.TrimSpace(symptom); s != "" {
		b.WriteString(" The patient reports the following symptom: ")
		b.WriteString(s)
		b.WriteString(".")
	}
	b.WriteString(transcript)
	return b.String()
}
