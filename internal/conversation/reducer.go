package conversation

import (
	"fmt"
	"time"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

// Status is the lifecycle state of an in-flight assistant message. The
// progression thinking → working → typing → complete is not strictly linear:
// any state may repeat, and error skips straight to complete.
type Status string

const (
	StatusThinking Status = "thinking"
	StatusWorking  Status = "working"
	StatusTyping   Status = "typing"
	StatusComplete Status = "complete"
)

// StepKind tags the two step variants of a thought trace.
type StepKind string

const (
	StepReasoning StepKind = "reasoning"
	StepToolCall  StepKind = "tool_call"
)

// Step is one reasoning or tool-call unit in a message's thought trace.
type Step struct {
	Kind StepKind

	// Reasoning steps only.
	Text string

	// Tool-call steps only. Results stays unset until the first tool_result
	// arrives for this call id; duplicate deliveries are last-write-wins.
	ToolCallID string
	ToolID     string
	Params     map[string]interface{}
	Results    []interface{}
	ResultsSet bool
}

// Message is one conversation message reconstructed from the event stream.
// Content is append-only while streaming; a message_complete event may
// overwrite it with the server-reassembled text.
type Message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
	Status    Status
	Steps     []Step
	Products  []entity.Product
}

// State is the reducer state for one streaming turn. It is advanced only
// through Apply; nothing else mutates a message once created.
type State struct {
	Message        Message
	ConversationID string

	// Errored marks a terminal error; subsequent events are ignored.
	Errored bool

	// OrphanResults counts tool_result events dropped for want of a
	// matching tool_call step.
	OrphanResults int
}

// NewState creates the state for a fresh assistant turn in thinking status.
func NewState(messageID string, now time.Time) State {
	return State{
		Message: Message{
			ID:        messageID,
			Role:      "assistant",
			Timestamp: now,
			Status:    StatusThinking,
		},
	}
}

// Apply is the pure transition function (State, Event) -> State. It never
// panics on malformed payloads; unrecognized or undecodable events leave the
// state unchanged, so the conversation is always left renderable.
func Apply(s State, ev stream.Event) State {
	if s.Errored {
		return s
	}

	switch ev.Type {
	case stream.TypeConversationStarted:
		var data stream.ConversationStartedData
		if ev.Decode(&data) == nil && data.ConversationID != "" {
			s.ConversationID = data.ConversationID
		}
		return s

	case stream.TypeReasoning:
		var data stream.ReasoningData
		if ev.Decode(&data) != nil {
			return s
		}
		return s.appendReasoning(data.Reasoning)

	case stream.TypeVisionAnalysis:
		var data stream.VisionAnalysisData
		if ev.Decode(&data) != nil {
			return s
		}
		return s.appendReasoning(fmt.Sprintf("Analyzed image: %s", data.Description))

	case stream.TypeVisionError:
		var data stream.VisionErrorData
		if ev.Decode(&data) != nil {
			return s
		}
		return s.appendReasoning(fmt.Sprintf("Image analysis failed: %s", data.Error))

	case stream.TypeToolCall:
		var data stream.ToolCallData
		if ev.Decode(&data) != nil {
			return s
		}
		// A placeholder call with empty params never creates a step, and a
		// re-emitted call id never creates a second one.
		if len(data.Params) == 0 || s.findStep(data.ToolCallID) >= 0 {
			return s
		}
		s.Message.Steps = append(cloneSteps(s.Message.Steps), Step{
			Kind:       StepToolCall,
			ToolCallID: data.ToolCallID,
			ToolID:     data.ToolID,
			Params:     data.Params,
		})
		s.Message.Status = StatusWorking
		return s

	case stream.TypeToolResult:
		var data stream.ToolResultData
		if ev.Decode(&data) != nil {
			return s
		}
		idx := s.findStep(data.ToolCallID)
		if idx < 0 {
			// Never synthesize an orphan step.
			s.OrphanResults++
			return s
		}
		steps := cloneSteps(s.Message.Steps)
		steps[idx].Results = data.Results
		steps[idx].ResultsSet = true
		s.Message.Steps = steps
		s.Message.Status = StatusWorking
		return s

	case stream.TypeMessageChunk:
		var data stream.MessageChunkData
		if ev.Decode(&data) != nil {
			return s
		}
		s.Message.Content += data.TextChunk
		s.Message.Status = StatusTyping
		return s

	case stream.TypeMessageComplete:
		var data stream.MessageCompleteData
		if ev.Decode(&data) == nil && data.MessageContent != "" {
			// The server-reassembled text is the source of truth and
			// reconciles any accumulation drift.
			s.Message.Content = data.MessageContent
		}
		s.Message.Status = StatusComplete
		return s

	case stream.TypeCompletion:
		var data stream.CompletionData
		if ev.Decode(&data) == nil && data.ConversationID != "" {
			s.ConversationID = data.ConversationID
		}
		s.Message.Status = StatusComplete
		return s

	case stream.TypeError:
		var data stream.ErrorData
		msg := "unknown error"
		if ev.Decode(&data) == nil && data.Error != "" {
			msg = data.Error
		}
		s.Message.Content = fmt.Sprintf("Sorry, something went wrong: %s", msg)
		s.Message.Status = StatusComplete
		s.Errored = true
		return s

	default:
		return s
	}
}

// ToolCallSteps returns the tool-call steps of the message, in order.
func (s State) ToolCallSteps() []Step {
	var steps []Step
	for _, step := range s.Message.Steps {
		if step.Kind == StepToolCall {
			steps = append(steps, step)
		}
	}
	return steps
}

func (s State) appendReasoning(text string) State {
	s.Message.Steps = append(cloneSteps(s.Message.Steps), Step{
		Kind: StepReasoning,
		Text: text,
	})
	// Status reflects the most recent known activity, not a strict
	// progression: reasoning after a tool call keeps the working status.
	if s.Message.Status != StatusWorking && s.Message.Status != StatusTyping {
		s.Message.Status = StatusThinking
	}
	return s
}

func (s State) findStep(toolCallID string) int {
	for i, step := range s.Message.Steps {
		if step.Kind == StepToolCall && step.ToolCallID == toolCallID {
			return i
		}
	}
	return -1
}

// cloneSteps copies the step slice so Apply never aliases a previous
// state's trace.
func cloneSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}
