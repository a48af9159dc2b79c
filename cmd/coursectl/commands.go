package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yanizio/coursehost/internal/app"
	"github.com/yanizio/coursehost/internal/course"
	"github.com/yanizio/coursehost/internal/tenant"
)

type resolveRow struct {
	Host           string         `json:"host"`
	NormalizedHost string         `json:"normalized_host"`
	Origin         tenant.Origin  `json:"origin"`
	Course         *course.Course `json:"course"`
}

func newResolveCmd(get func() *app.App, out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <host>...",
		Short: "Classify hosts as frontend, backend, or external",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := get().Resolver
			rows := make([]resolveRow, 0, len(args))
			for _, h := range args {
				origin, crs := res.Classify(cmd.Context(), h)
				rows = append(rows, resolveRow{
					Host:           h,
					NormalizedHost: tenant.NormalizeHost(h),
					Origin:         origin,
					Course:         crs,
				})
			}
			if *out == "json" {
				return printJSON(rows)
			}

			tw := newTable()
			fmt.Fprintln(tw, "HOST\tORIGIN\tCOURSE")
			for _, r := range rows {
				label := "-"
				if r.Course != nil {
					label = fmt.Sprintf("%d %s", r.Course.ID, r.Course.Slug)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Host, r.Origin, label)
			}
			return tw.Flush()
		},
	}
}

func newSchemaCmd(get func() *app.App, out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Report whether the courses and domains tables exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := get().Courses.SchemaReady(cmd.Context())
			if err != nil {
				return err
			}
			if *out == "json" {
				return printJSON(map[string]any{"ready": ok, "tables": course.Tables})
			}
			if ok {
				fmt.Println("schema ready")
				return nil
			}
			fmt.Println("schema not installed: every host resolves as external or backend")
			return nil
		},
	}
}

func newDomainsCmd(get func() *app.App, out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "domains <courseID>",
		Short: "List the hosts mapped to a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("course id: %w", err)
			}
			a := get()
			crs, err := a.Courses.ByID(cmd.Context(), id)
			if errors.Is(err, course.ErrNotFound) {
				return fmt.Errorf("course %d does not exist", id)
			}
			if err != nil {
				return err
			}
			domains, err := a.Courses.Domains(cmd.Context(), id)
			if err != nil {
				return err
			}
			if *out == "json" {
				return printJSON(map[string]any{"course": crs, "domains": domains})
			}

			tw := newTable()
			fmt.Fprintf(tw, "COURSE\t%d %s (%s)\n", crs.ID, crs.Slug, crs.Name)
			for _, d := range domains {
				fmt.Fprintf(tw, "HOST\t%s\n", d.Host)
			}
			return tw.Flush()
		},
	}
}
