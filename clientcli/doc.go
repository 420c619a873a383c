// Package clientcli provides a client library for filegate servers.
//
// It supports upload (single file or a directory tree), download, metadata
// lookup, delete and paginated listing. The package includes profile-based
// configuration for managing connections to multiple servers.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5708"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath:  "./file.txt",
//		RemotePath: "documents/file.txt",
//	})
//
// # Listing
//
// A page token is sent on its own: the server rejects it when combined with a
// page size or directory. List with All set follows next_page_token until the
// listing ends.
//
//	page, err := client.List(ctx, clientcli.ListOptions{Directory: "documents/", PageSize: 50})
//	next, err := client.List(ctx, clientcli.ListOptions{PageToken: page.NextPageToken})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	profile, err := configFile.GetProfile("production")
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
