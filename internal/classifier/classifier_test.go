package classifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/ticketflow/internal/model"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, jsonMode bool) (string, error) {
	f.calls++
	return f.response, f.err
}

func fullCaps() Capabilities {
	return Capabilities{TicketingEnabled: true, RetrievalEnabled: true, DelegationEnabled: true}
}

func TestClassifyMetaToolingExclusion(t *testing.T) {
	c := New(Config{}, fullCaps(), nil)
	decision := c.Classify(context.Background(), "how does confluence integration work?")
	require.Equal(t, model.IntentGeneralChat, decision.Intent)
	require.Equal(t, model.SourceKeyword, decision.Source)
}

func TestClassifyJiraCreationKeyword(t *testing.T) {
	c := New(Config{}, fullCaps(), nil)
	decision := c.Classify(context.Background(), "please create a jira ticket for the login bug")
	require.Equal(t, model.IntentJiraCreation, decision.Intent)
}

func TestClassifyJiraCreationRequiresCapability(t *testing.T) {
	c := New(Config{}, Capabilities{}, nil)
	decision := c.Classify(context.Background(), "create a jira ticket")
	require.NotEqual(t, model.IntentJiraCreation, decision.Intent)
}

func TestClassifyRetrievalKeyword(t *testing.T) {
	c := New(Config{}, fullCaps(), nil)
	decision := c.Classify(context.Background(), "show me the acceptance criteria for ENG-123")
	require.Equal(t, model.IntentRAGQuery, decision.Intent)
}

func TestClassifyProjectKeyPattern(t *testing.T) {
	c := New(Config{}, fullCaps(), nil)
	decision := c.Classify(context.Background(), "can you lookup ENG-456 please")
	require.Equal(t, model.IntentRAGQuery, decision.Intent)
}

func TestClassifyGreeting(t *testing.T) {
	c := New(Config{}, fullCaps(), nil)
	decision := c.Classify(context.Background(), "hello there")
	require.Equal(t, model.IntentGeneralChat, decision.Intent)
}

func TestClassifyDelegationKeyword(t *testing.T) {
	c := New(Config{}, fullCaps(), nil)
	decision := c.Classify(context.Background(), "give me the ai daily report")
	require.Equal(t, model.IntentAgentDelegation, decision.Intent)
}

func TestClassifyFallsThroughToLLM(t *testing.T) {
	llm := &fakeLLM{response: `{"intent":"jira_creation","confidence":0.9,"reasoning":"ambiguous but implies a bug report"}`}
	c := New(Config{UseLLM: true, LLMTimeout: time.Second, ConfidenceThreshold: 0.7}, fullCaps(), llm)

	decision := c.Classify(context.Background(), "the login page is broken again")
	require.Equal(t, model.IntentJiraCreation, decision.Intent)
	require.Equal(t, model.SourceLLM, decision.Source)
	require.Equal(t, 1, llm.calls)
}

func TestClassifyLLMBelowThresholdFallsBackToGeneralChat(t *testing.T) {
	llm := &fakeLLM{response: `{"intent":"jira_creation","confidence":0.4,"reasoning":"not sure"}`}
	c := New(Config{UseLLM: true, LLMTimeout: time.Second, ConfidenceThreshold: 0.7}, fullCaps(), llm)

	decision := c.Classify(context.Background(), "something weird happened")
	require.Equal(t, model.IntentGeneralChat, decision.Intent)
}

func TestClassifyLLMResultIsCached(t *testing.T) {
	llm := &fakeLLM{response: `{"intent":"general_chat","confidence":0.9,"reasoning":"small talk"}`}
	c := New(Config{UseLLM: true, LLMTimeout: time.Second, ConfidenceThreshold: 0.7}, fullCaps(), llm)

	first := c.Classify(context.Background(), "tell me something random")
	second := c.Classify(context.Background(), "Tell Me Something Random  ")

	require.Equal(t, model.SourceLLM, first.Source)
	require.Equal(t, model.SourceCache, second.Source)
	require.Equal(t, 1, llm.calls)
}

func TestClassifyLLMErrorFallsBackToDefault(t *testing.T) {
	llm := &fakeLLM{err: context.DeadlineExceeded}
	c := New(Config{UseLLM: true, LLMTimeout: time.Second, ConfidenceThreshold: 0.7}, fullCaps(), llm)

	decision := c.Classify(context.Background(), "ambiguous nonsense words")
	require.Equal(t, model.IntentGeneralChat, decision.Intent)
	require.Equal(t, model.SourceDefault, decision.Source)
}

func TestClassifyStripsMarkdownFencesFromLLMResponse(t *testing.T) {
	llm := &fakeLLM{response: "```json\n{\"intent\":\"general_chat\",\"confidence\":0.95,\"reasoning\":\"chit chat\"}\n```"}
	c := New(Config{UseLLM: true, LLMTimeout: time.Second, ConfidenceThreshold: 0.7}, fullCaps(), llm)

	decision := c.Classify(context.Background(), "just chatting here")
	require.Equal(t, model.IntentGeneralChat, decision.Intent)
	require.Equal(t, model.SourceLLM, decision.Source)
}
