package jsonutil_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/drblury/todoweaver/jsonutil"
)

func Example() {
	type todo struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
		Order     int    `json:"order"`
	}

	item := todo{Title: "buy milk", Order: 3}

	data, _ := jsonutil.Marshal(item)
	fmt.Println(string(data))

	var decoded todo
	_ = jsonutil.Unmarshal(data, &decoded)
	fmt.Println(decoded.Order)

	buf := &bytes.Buffer{}
	_ = jsonutil.Encode(buf, item)

	var streamed todo
	_ = jsonutil.Decode(buf, &streamed)
	fmt.Println(streamed.Title)

	// Output:
	// {"title":"buy milk","completed":false,"order":3}
	// 3
	// buy milk
}

func ExampleMarshalIndent() {
	payload := map[string]any{
		"title": "walk the dog",
		"tags":  []string{"home", "daily"},
	}

	data, err := jsonutil.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Println("marshal error:", err)
		return
	}

	fmt.Println(strings.TrimSpace(string(data)))

	// Output:
	// {
	//   "tags": [
	//     "home",
	//     "daily"
	//   ],
	//   "title": "walk the dog"
	// }
}

func ExampleDecode_object() {
	var body map[string]any
	if err := jsonutil.Decode(strings.NewReader(`{"title":"buy bread","order":1}`), &body); err != nil {
		fmt.Println("decode error:", err)
		return
	}
	fmt.Println(body["title"], body["order"])

	// Output:
	// buy bread 1
}

func ExampleValid() {
	fmt.Println(jsonutil.Valid([]byte(` {"title":"buy bread"} `)))
	fmt.Println(jsonutil.Valid([]byte(`{"title":"buy bread"} trailing`)))
	fmt.Println(jsonutil.Valid([]byte(`{"title":`)))

	// Output:
	// true
	// false
	// false
}
