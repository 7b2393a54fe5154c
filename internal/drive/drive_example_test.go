package drive

import (
	"fmt"
	"log"
	"testing"
)

func ExampleResolve() {
	// адрес страницы, с которой пришел запрос. имя файла отбрасывается
	links, err := Resolve("https://drive.google.com/file/d/1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7/view", "https://example.com/index.html")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(links.FileID)
	fmt.Println(links.Direct)
	fmt.Println(links.Proxy)

	// Output:
	// 1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7
	// https://drive.google.com/uc?export=view&id=1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7
	// https://example.com/viewer.html?id=1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7
}

func BenchmarkExtract(b *testing.B) {
	b.Run("ссылка на файл", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Extract("https://drive.google.com/file/d/1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7/view")
		}
	})
	b.Run("общий шаблон", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Extract("1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7")
		}
	})
}
