// Package nurseally provides an embeddable Go client for the Nurse Ally
// pediatric assistant. It answers from the same artifact directory the
// API server reads, without going through the HTTP relay.
//
// A question is answered from the vital-sign table when it names a
// measurement and an age, and by the language model otherwise:
//
//	client, _ := nurseally.New(ctx,
//	    nurseally.WithArtifacts("data"),
//	    nurseally.WithEmbeddingServer("http://127.0.0.1:1234/v1", "lm-studio",
//	        "text-embedding-bge-small-en-v1.5", 384),
//	    nurseally.WithLMStudio("", ""),
//	)
//	ans, _ := client.Ask(ctx, "What is the heart rate for a 1 year old?")
//	fmt.Println(ans.Text) // For a 1 yr - <2, the heart rate is 100-150.
//
// Custom providers plug in through the Embedder and ChatModel interfaces.
package nurseally
