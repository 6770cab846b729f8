// Package sdk embeds the docsearch engine in a Go program.
//
// The client talks to the document store directly (Redis, Valkey or an
// embedded Badger database) and runs ingestion, hybrid search and embedding
// backfill in-process:
//
//	client, _ := sdk.New(ctx,
//	    sdk.WithBadger("/var/lib/docsearch"),
//	    sdk.WithEmbedder(embedder),
//	    sdk.WithGenerator(generator),
//	)
//	defer client.Close()
//
//	doc, _ := client.Documents("user_1").Add(ctx, sdk.NewDocument{
//	    FileName: "report.pdf",
//	    Text:     extracted,
//	})
//	res, _ := client.Search(ctx, "user_1", "what drove revenue growth?")
//
// Without an embedder search ranks lexically; without a generator
// documents are stored without summary or insights and questions get no answer.
package sdk
