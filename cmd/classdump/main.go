// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command classdump dumps the structure of JVM class files, in the spirit
// of the teacher pedumper CLI: a cobra-based "dump"/"version" harness over
// a decoding library, rather than a PE-specific tool.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	classfile "github.com/saferwall/classfile"
	"github.com/saferwall/classfile/log"
)

var (
	wantPool       bool
	wantMethods    bool
	wantFields     bool
	wantAttributes bool
	wantAll        bool
	strictLength   bool
	verbose        bool
)

func prettyPrint(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func newLogger() log.Logger {
	logger := log.NewStdLogger(os.Stderr)
	if !verbose {
		logger = log.NewFilter(logger, log.FilterLevel(log.LevelWarn))
	}
	return logger
}

func dumpOne(path string) {
	logger := newLogger()
	helper := log.NewHelper(logger)
	helper.Infof("parsing %s", path)

	cf, err := classfile.New(path, &classfile.Options{
		StrictAttributeLength: strictLength,
		Logger:                logger,
	})
	if err != nil {
		helper.Errorf("failed to open %s: %v", path, err)
		return
	}
	defer cf.Close()

	if err := cf.Parse(); err != nil {
		helper.Errorf("failed to parse %s: %v", path, err)
		return
	}
	class := cf.Class

	w := tabwriter.NewWriter(os.Stdout, 1, 1, 3, ' ', tabwriter.AlignRight)
	fmt.Printf("\n\t------[ %s ]------\n\n", path)
	fmt.Fprintf(w, "Version:\t %d.%d\n", class.Version.Major, class.Version.Minor)
	fmt.Fprintf(w, "This class:\t %s\n", class.ThisClass.Name.Value)
	if class.SuperClass != nil {
		fmt.Fprintf(w, "Super class:\t %s\n", class.SuperClass.Name.Value)
	} else {
		fmt.Fprintf(w, "Super class:\t (none)\n")
	}
	fmt.Fprintf(w, "Access flags:\t 0x%04x\n", class.AccessFlags)
	fmt.Fprintf(w, "Constant pool count:\t %d\n", class.ConstantPool.Count())
	fmt.Fprintf(w, "Interfaces:\t %d\n", len(class.Interfaces))
	fmt.Fprintf(w, "Fields:\t %d\n", len(class.Fields))
	fmt.Fprintf(w, "Methods:\t %d\n", len(class.Methods))
	fmt.Fprintf(w, "Attributes:\t %d\n", len(class.Attributes))
	w.Flush()

	if wantPool {
		fmt.Print("\n   ---Constant pool---\n")
		fmt.Println(prettyPrint(class.ConstantPool.Entries()))
	}
	if wantFields {
		fmt.Print("\n   ---Fields---\n")
		fmt.Println(prettyPrint(class.Fields))
	}
	if wantMethods {
		fmt.Print("\n   ---Methods---\n")
		fmt.Println(prettyPrint(class.Methods))
	}
	if wantAttributes {
		fmt.Print("\n   ---Attributes---\n")
		fmt.Println(prettyPrint(class.Attributes))
	}
	if wantAll {
		fmt.Println(prettyPrint(class))
	}
}

func dump(cmd *cobra.Command, args []string) {
	path := args[0]
	if !isDirectory(path) {
		dumpOne(path)
		return
	}

	var files []string
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && filepath.Ext(p) == ".class" {
			files = append(files, p)
		}
		return nil
	})
	for _, f := range files {
		dumpOne(f)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "classdump",
		Short: "A JVM class file parser",
		Long:  "A JVM class file decoder built for static analysis, by Saferwall",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Dumps the structure of a class file",
		Long:  "Decodes a .class file, or every .class file under a directory, and prints its structure",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	dumpCmd.Flags().BoolVarP(&wantPool, "pool", "", false, "Dump constant pool entries")
	dumpCmd.Flags().BoolVarP(&wantFields, "fields", "", false, "Dump field_info entries")
	dumpCmd.Flags().BoolVarP(&wantMethods, "methods", "", false, "Dump method_info entries")
	dumpCmd.Flags().BoolVarP(&wantAttributes, "attributes", "", false, "Dump class-level attributes")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "Dump the fully assembled class")
	dumpCmd.Flags().BoolVarP(&strictLength, "strict-length", "", false, "Reject attributes whose declared length does not match the bytes consumed")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
