package Relay

import "strings"

// commandKind enumerates the recognized literal commands. Dispatch happens
// through this table once at the top of event handling, never on free text.
type commandKind int

const (
	cmdNone commandKind = iota
	cmdStart
	cmdWho
	cmdText
	cmdImage
)

var commandTable = map[string]commandKind{
	"/start": cmdStart,
	"/who":   cmdWho,
	"/text":  cmdText,
	"/image": cmdImage,
}

// resolveCommand maps the leading word of a text message to a command.
// Telegram appends "@botname" to commands in group chats; that suffix is
// stripped before lookup.
func resolveCommand(text string) commandKind {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return cmdNone
	}
	word := fields[0]
	if i := strings.Index(word, "@"); i > 0 {
		word = word[:i]
	}
	return commandTable[word]
}

// Fixed user-facing strings. Terminal failures always surface as one of the
// short stable messages below; diagnostic detail stays in the logs.
const (
	systemDirective = "You are a witty and humorous AI assistant that calls itself 'a little AGI'. " +
		"You love using modern emojis like 😂, 😎, 🤔, 🔥, and 😉 to sound like a real person chatting on Telegram. " +
		"Keep your responses friendly, engaging, and short, with a maximum of about 300 words."

	welcomeText = "Hey there! 😎 I'm your personal pocket AGI, ready to chat about anything and everything. " +
		"What's on your mind? 🤔 Fire away! 🔥"

	creatorText = "I was brought to life by a brilliant Ethiopian developer named Edym! 🇪🇹👨‍💻\n\n" +
		"You can find him on Telegram at @ANDREW56776. He's the mastermind behind this little AGI. 😉"

	thinkingText = "Hmm, let me think... 🤔"

	textModeAckText = "Cool! ✍️ Send me the prompt you want me to write about. 🔥"

	imageModeAckText = "Nice! 🎨 Describe the image you have in mind and send it over. 😎"

	emptyResultText = "Oops, I got a bit tongue-tied there. 😅 Could you try rephrasing that?"

	rateLimitedText = "Yikes! I'm having some trouble connecting to my brain right now. Please try again in a moment. 😵"

	genericApologyText = "Oof, something went wrong on my end. 🛠️ Sorry about that! Please try again."
)
