package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "actual" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"type_mismatch":          "type mismatch: expected {expected}, got {actual}",
		"arity_mismatch":         "arity mismatch: expected {expected} elements, got {actual}",
		"missing_required_field": "required field missing",
		"unknown_field":          "unknown field",
		"immutable_record":       "record is frozen",
		"duplicate_key":          "key {key} already registered",
		"unknown_key":            "key {key} not registered",
		"ambiguous_input":        "cannot determine record type from {field}",
		"structure_mismatch":     "structure mismatch: expected {expected}, got {actual}",
		"rule_violation":         "rule {rule} violated",
		"invalid_schema":         "invalid schema declaration",
		"registry_sealed":        "registry is sealed",
		"parse_error":            "parse error",
		"duplicate_field":        "duplicate field {key}",
	},
	"ja": {
		"type_mismatch":          "型が不正です: {expected} を期待しましたが {actual} でした",
		"arity_mismatch":         "要素数が不正です: {expected} 個を期待しましたが {actual} 個でした",
		"missing_required_field": "必須フィールドが不足しています",
		"unknown_field":          "未知のフィールドです",
		"immutable_record":       "レコードは凍結されています",
		"duplicate_key":          "キー {key} は登録済みです",
		"unknown_key":            "キー {key} は登録されていません",
		"ambiguous_input":        "{field} からレコード型を決定できません",
		"structure_mismatch":     "構造が不正です: {expected} を期待しましたが {actual} でした",
		"rule_violation":         "ルール {rule} に違反しています",
		"invalid_schema":         "スキーマ宣言が不正です",
		"registry_sealed":        "レジストリは封印されています",
		"parse_error":            "解析エラー",
		"duplicate_field":        "フィールド {key} が重複しています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
