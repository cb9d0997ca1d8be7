// Package envelope extracts the marker-delimited meal payload the assistant
// embeds inside otherwise free-text replies.
//
// Wire format:
//
//	<free text>---DATA_START---<JSON object or array>---DATA_END---<free text>
//
// The JSON carries snake_case meal fields (food_name, calories, protein,
// carbs, fat, optionally meal_time and quantity). Absence of either marker
// means no payload. Malformed JSON between the markers also means no payload,
// and in that case the original text is returned untouched - markers and all -
// because stripping and decoding happen through the same match.
package envelope

import (
	"encoding/json"
	"regexp"
	"strings"

	"paytak/internal/httputil"
)

// ResultKind discriminates the two possible parse outcomes.
type ResultKind int

const (
	// KindText means the message is plain text with no usable payload.
	KindText ResultKind = iota
	// KindTextWithMeals means a payload was extracted; DisplayText has the
	// marker block removed and Meals holds the decoded entries.
	KindTextWithMeals
)

// RawMeal is one decoded payload entry before normalization. Numeric fields
// tolerate numbers or numeric strings; anything else coerces to zero.
type RawMeal struct {
	FoodName string             `json:"food_name"`
	Calories httputil.FlexFloat `json:"calories"`
	Protein  httputil.FlexFloat `json:"protein"`
	Carbs    httputil.FlexFloat `json:"carbs"`
	Fat      httputil.FlexFloat `json:"fat"`
	MealTime string             `json:"meal_time"`
	Quantity httputil.FlexFloat `json:"quantity"`
}

// Result is the tagged outcome of Parse.
type Result struct {
	Kind        ResultKind
	DisplayText string
	Meals       []RawMeal
}

// blockRe matches the first marker-delimited block, non-greedy. Nested or
// repeated blocks are not supported; only the first is processed.
var blockRe = regexp.MustCompile(`(?s)---DATA_START---(.*?)---DATA_END---`)

// Parse splits an assistant reply into display text and an optional meal
// payload. It is pure: no I/O, no hidden state.
func Parse(text string) Result {
	m := blockRe.FindStringSubmatchIndex(text)
	if m == nil {
		return Result{Kind: KindText, DisplayText: text}
	}

	payload := strings.TrimSpace(text[m[2]:m[3]])
	meals, ok := decodeMeals(payload)
	if !ok {
		// Decode failures are swallowed: the message degrades to plain text
		// and the raw markers stay visible.
		return Result{Kind: KindText, DisplayText: text}
	}

	return Result{
		Kind:        KindTextWithMeals,
		DisplayText: joinAround(text[:m[0]], text[m[1]:]),
		Meals:       meals,
	}
}

// joinAround stitches the text on either side of the stripped block back
// together with a single space so words that only the block separated do not
// run into each other.
func joinAround(before, after string) string {
	before = strings.TrimSpace(before)
	after = strings.TrimSpace(after)
	switch {
	case before == "":
		return after
	case after == "":
		return before
	}
	return before + " " + after
}

// decodeMeals accepts either a single object or an array of objects and
// always yields a sequence, preserving order.
func decodeMeals(payload string) ([]RawMeal, bool) {
	data := []byte(payload)

	var many []RawMeal
	if err := json.Unmarshal(data, &many); err == nil {
		// A literal null decodes into a nil slice without error. There is
		// no payload in that, so it degrades like any other bad block.
		return many, many != nil
	}

	var one RawMeal
	if err := json.Unmarshal(data, &one); err == nil {
		return []RawMeal{one}, true
	}

	return nil, false
}
