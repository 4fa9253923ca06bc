package mcpserver

// SkillFormatContract describes the canonical skill package format that
// library authors (human or LLM) should follow.
const SkillFormatContract = `# Raido Skill Format Contract

Every skill in a Raido library is a directory containing a ` + "`SKILL.md`" + `
plus any number of supporting Markdown documents.

## Structure

` + "```" + `markdown
---
name: turbo-navigation              # REQUIRED - unique across the library
description: Frames, drive and      # REQUIRED - one line, used for ranking
  morphing patterns for Turbo.
category: skill                     # OPTIONAL - skill|reference|handbook|command|agent
triggers:                           # OPTIONAL - phrases that should route here
  - turbo frame
  - page refresh
neighbors:                          # OPTIONAL - escalation edges
  - skill: turbo-streams            # must name an existing skill
    when: the update must broadcast to other subscribers
documents:                          # OPTIONAL - supporting files
  - path: references/frames.md
    description: Frame targeting and lazy loading
    category: reference
  - glob: references/*.md           # expands against the skill directory
    category: reference
---

Body prose in standard Markdown. This is the skill's root document.
` + "```" + `

## Rules

1. **YAML front-matter is mandatory** in ` + "`SKILL.md`" + `. The ` + "`---`" + ` fences
   must be the first thing in the file.
2. **` + "`name`" + ` and ` + "`description`" + ` are required.** A record missing either
   fails the whole library load.
3. **Names are unique.** Two skills with the same name fail the load.
4. **Neighbors must resolve.** Every ` + "`neighbors[].skill`" + ` must name a
   skill present in the same library; a dangling edge fails the load.
   Declaration order does not matter - edges are checked after every
   skill is read.
5. **Conditions are prose.** The ` + "`when`" + ` text is a hint for the consuming
   host. Raido never evaluates it and never forces an escalation.
6. **Names are lowercase, kebab-case** (e.g. ` + "`turbo-streams`" + `,
   ` + "`hotwire-native`" + `).
7. **Supporting documents** may carry their own front-matter with
   ` + "`title`" + ` and ` + "`description`" + `; otherwise both are derived from the
   first H1 and first paragraph.
8. **Load references selectively.** Hosts should read ` + "`SKILL.md`" + ` first
   and pull supporting documents only when the task needs them; Raido's
   session cache tracks what has already been loaded.
9. **Encoding** is UTF-8, file paths end with ` + "`.md`" + ` and use forward
   slashes.

## Example

` + "```" + `markdown
---
name: stimulus-controllers
description: Writing and wiring Stimulus controllers.
triggers: [stimulus, data-controller]
neighbors:
  - skill: turbo-navigation
    when: the behavior belongs in navigation rather than a controller
documents:
  - path: references/lifecycle.md
    category: reference
---

# Stimulus Controllers

Keep controllers small; one behavior per controller...
` + "```" + `
`
