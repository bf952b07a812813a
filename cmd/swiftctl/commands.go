package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
	"github.com/andresuchdata/swiftbrowser/internal/tempurl"
)

func listContainers(c *cli.Context) error {
	client, err := clientFrom(c)
	if err != nil {
		return err
	}

	stat, err := client.Account(c.Context)
	if err != nil {
		return fmt.Errorf("failed to read account: %w", err)
	}
	containers, err := client.Containers(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOBJECTS\tSIZE")
	for _, container := range containers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", container.Name, humanize.Comma(container.Count), humanize.IBytes(uint64(container.Bytes)))
	}
	fmt.Fprintf(w, "\t%s\t%s\n", humanize.Comma(stat.ObjectCount), humanize.IBytes(uint64(stat.BytesUsed)))
	return w.Flush()
}

func listObjects(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("container name is required")
	}
	client, err := clientFrom(c)
	if err != nil {
		return err
	}

	container, prefix := c.Args().Get(0), c.Args().Get(1)
	objects, err := client.Objects(c.Context, container, swift.ListOptions{Prefix: prefix, Delimiter: '/'})
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", container, err)
	}
	folders, plain := domain.SplitListing(objects, prefix)

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, folder := range folders {
		fmt.Fprintf(w, "%s\t\t\n", folder.Entry)
	}
	for _, object := range plain {
		fmt.Fprintf(w, "%s\t%s\t%s\n", object.Name, humanize.IBytes(uint64(object.Bytes)), domain.FormatTimestamp(object.LastModified.Unix()))
	}
	return w.Flush()
}

func printTempURL(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("container and object are required")
	}
	client, err := clientFrom(c)
	if err != nil {
		return err
	}

	key, err := swift.TempKey(c.Context, client)
	if err != nil {
		return fmt.Errorf("failed to get temp url key: %w", err)
	}
	url, err := tempurl.Sign(client.StorageURL(), c.Args().Get(0), c.Args().Get(1), key, c.String("method"), time.Now().Add(c.Duration("ttl")))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, url)
	return nil
}

func tempKey(c *cli.Context) error {
	client, err := clientFrom(c)
	if err != nil {
		return err
	}

	if !c.Bool("rotate") {
		key, err := swift.TempKey(c.Context, client)
		if err != nil {
			return fmt.Errorf("failed to get temp url key: %w", err)
		}
		fmt.Fprintln(c.App.Writer, key)
		return nil
	}

	key, err := tempurl.GenerateKey()
	if err != nil {
		return err
	}
	if err := client.UpdateAccount(c.Context, map[string]string{tempurl.AccountKeyHeader: key}); err != nil {
		return fmt.Errorf("failed to store temp url key: %w", err)
	}
	fmt.Fprintln(c.App.Writer, key)
	return nil
}
