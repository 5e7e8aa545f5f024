package prompts

// Writing guidelines injected into the article prompt. The article voice
// follows a spoken-language style guide, avoids detectable AI phrasing,
// and keeps citations inline on the facts themselves.

const SpokenLanguageGuide = `
# Paul Graham Guide: Write Like You Talk
Here's a simple trick for getting more people to read what you write: write in spoken language.
Something comes over most people when they start writing. They write in a different language than they'd use if they were talking to a friend. The sentence structure and even the words are different. No one uses "pen" as a verb in spoken English.
Informal language is the athletic clothing of ideas.
It seems to be hard for most people to write in spoken language. So perhaps the best solution is to write your first draft the way you usually would, then afterward look at each sentence and ask "Is this the way I'd say this if I were talking to a friend?" If it isn't, imagine what you would say, and use that instead.
`

const AntiDetectionGuide = `
# Guide for Avoiding Content Detection
1. **Perplexity**: Humans pick weird words sometimes. If a computer can easily guess your next word, you sound like AI.
   *Bad:* "The meeting was productive and resulted in several actionable items."
   *Good:* "The meeting actually got stuff done for once, we have like six things to fix now."

2. **Burstiness**: Humans write really long sentences full of ideas and tangents and then stop. Short. Then medium again. AI writes sentences that are all about the same length.
   *Bad:* Uniform sentence length.
   *Good:* "We shipped on time. Miracle, honestly, considering we were fixing bugs until 3am... Numbers are up. Way up."

3. **Cognitive Load Markers**: Humans think out loud. They use false starts, self-corrections, or conversational filler naturally.
   *Good:* "There's like three, actually maybe four factors behind why users aren't sticking around."
`

const BannedTerms = `
# BANNED TERMS AND PHRASES
NEVER USE THESE:
- Transforming / Transform / Transformative power
- Revolutionize / Revolutionary
- Game changer
- Underscoring / This underscores
- Robust
- Harness / Harnesses / Harnessing
- Picture this / Imagine / Imagine this:
- In today's fast-paced world
- Delve / Delve deeper
- Remember when…
- Boosts
- Leverage
- Paramount
- Elevate
- Ignite
- Empower
- Cutting-edge
- Unleash
- Innovate
- Dynamic
- Streamline
- Tapestry / Whispering / Labyrinth / Oasis / Enigma

**ABSOLUTELY BANNED SENTENCE STRUCTURES:**
- "It's not just [X], it's [Y]"
- "It's not just about [X], it's about [Y]"
- "It's no longer an option, it's a choice"
- "This isn't hype—it's reality"
- "X isn't some distant future—it's here today"
`

const CitationRules = `
# CRITICAL CITATION RULES
1. **Hyperlink the specific fact**, not introductory words.
   *Bad:* "According to [Source], stats are high."
   *Good:* "California's average settlement reaches [$1.7 million](url), making it..."
2. **NO COMPETITOR LINKS**: Do NOT link to other Law Firm websites. If you find a stat on a law firm site, mention it without a link.
3. **Flow**: Links need to flow organically within sentences.
`
