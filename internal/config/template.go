package config

// DefaultConfigTemplate is written by 'projgen config init'. Its values
// match DefaultConfig.
const DefaultConfigTemplate = `# projgen configuration
# Environment variables PROJGEN_<KEY> override these values.

# Extra directories searched for templates.
template_dirs: []

# Templates shipped with projgen, installed by 'projgen config init'.
builtin_dir: ~/.projgen/builtin

# Your own templates.
user_dir: ~/.projgen/templates

# Scan template directories recursively.
recursive_scan: true

# Cache parsed templates for the lifetime of the process.
cache_enabled: true

# Limits applied while validating templates.
max_template_size: 10485760
max_variables: 50
variable_name_pattern: '^[a-zA-Z][a-zA-Z0-9_]*$'
allowed_extensions: [.yaml, .yml]

# Require schema_version, configuration, template_files, hooks and compatibility.
full_schema: false

# Security.
allow_custom_validators: false
allow_external_commands: false
command_whitelist: [git, go, npm, make]

log:
  timestamps: true
`
