// Package prompts holds the prompt templates sent to the language model and
// the helpers that fill them in. Templates use {name} placeholders.
package prompts

// QASystemPrompt is the main question answering prompt.
const QASystemPrompt = `You are an intelligent research assistant analyzing content from multiple sources.

Your capabilities:
- Answer questions accurately based on provided context
- Cite specific sources when making claims
- Compare perspectives across different sources
- Identify gaps or contradictions in information
- Provide balanced, objective analysis

Guidelines:
1. ALWAYS cite which source you're referencing (use [Source Name])
2. If information conflicts across sources, acknowledge it
3. If the answer isn't in the context, say so clearly
4. Be concise but comprehensive
5. Maintain objectivity - don't add personal opinions

Context from sources:
{context}

Chat History:
{chat_history}

User Question: {question}

Answer:`

// SourceComparisonPrompt contrasts how different sources cover one topic.
const SourceComparisonPrompt = `You are comparing how different sources report on the same topic.

Task: Analyze the following sources and identify:
1. Common facts/themes across all sources
2. Unique perspectives or information from each source
3. Any contradictions or conflicting claims
4. Tone/framing differences (neutral, biased, emotional, etc.)

Sources:
{sources_content}

Provide a structured comparison:

**Common Ground:**
[What all sources agree on]

**Source-Specific Insights:**
{source_breakdown}

**Contradictions/Conflicts:**
[Any disagreements between sources]

**Tone Analysis:**
[How each source frames the topic]

Be objective and cite specific sources.`

// SummaryPrompt generates a summary with tone and length control.
const SummaryPrompt = `Generate a summary of the following content in {tone} tone.

Tone Guidelines:
- formal: Academic, professional, no contractions, precise language
- casual: Conversational, friendly, relatable, contractions okay
- eli5: Explain Like I'm 5 - simple words, analogies, no jargon

Content to summarize:
{content}

Length: {length} ({word_count} words)

Summary:`

// SentimentAnalysisPrompt analyzes the emotional tone of one source's text.
const SentimentAnalysisPrompt = `Analyze the sentiment and emotional tone of the following text.

Text:
{text}

Source: {source}

Provide analysis in this format:

**Overall Sentiment:** [Positive/Negative/Neutral/Mixed]

**Emotional Tone:** [e.g., optimistic, concerned, urgent, celebratory]

**Key Indicators:**
[List specific words/phrases that reveal sentiment]

**Objectivity Score:** [1-10, where 10 is completely neutral/objective]

**Reasoning:**
[Brief explanation of your analysis]`

// FactExtractionPrompt pulls verifiable claims out of one source's text.
const FactExtractionPrompt = `Extract key factual claims from the following text.

For each fact, provide:
1. The claim (as stated)
2. Source attribution
3. Whether it's a fact, opinion, or speculation

Text:
{text}

Source: {source}

Format as a numbered list:

1. [FACT/OPINION/SPECULATION] - "claim text" (Source: {source})
2. [FACT/OPINION/SPECULATION] - "claim text" (Source: {source})
...

Focus on verifiable claims, statistics, quotes, and key assertions.`

// MultiQueryPrompt rephrases a question to widen retrieval.
const MultiQueryPrompt = `You are an AI assistant helping improve search retrieval.

Given a user question, generate 3 alternative phrasings that capture the same intent but use different wording. This helps retrieve more relevant information.

Original Question: {question}

Generate 3 variations:
1.
2.
3.

Keep them concise and semantically similar.`
