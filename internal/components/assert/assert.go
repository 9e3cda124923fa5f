package assert

import "fmt"

func NotNil(value any, name ...string) {
	if value == nil {
		panic(fmt.Sprintf("expected %s to be not nil", describe(name)))
	}
}

func NotEmptyStr(str string, name ...string) {
	if str == "" {
		panic(fmt.Sprintf("expected %s to be non-empty", describe(name)))
	}
}

func Positive(n int, name ...string) {
	if n <= 0 {
		panic(fmt.Sprintf("expected %s to be positive, got %d", describe(name), n))
	}
}

func describe(name []string) string {
	if len(name) == 0 {
		return "value"
	}
	return name[0]
}
