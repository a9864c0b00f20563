package services

// answerSystemPrompt frames the synthesis call. The model must answer
// from the retrieved excerpts, not from prior knowledge.
const answerSystemPrompt = `You are an assistant that answers questions over a set of given documents.
Answer using ONLY the document excerpts provided in the conversation. Do not rely on prior knowledge.
If the excerpts do not contain the answer, say you do not know.`

// condenseSystemPrompt turns a follow-up question plus chat history
// into a self-contained question suitable for retrieval.
const condenseSystemPrompt = `Given a chat history and a follow-up question, rewrite the follow-up
into a standalone question that can be understood without the history.
Resolve pronouns and references to earlier turns.
Return ONLY the rewritten question, nothing else.`

// emptyIndexAnswer is returned when the corpus holds no indexable text.
const emptyIndexAnswer = "I don't have any documents to answer from yet. Add documents to the corpus directory and try again."
