package sqlinline

const QSelectIntegrationToken = `--sql 91b93ed6-35d8-407f-a98b-c9e3b696aa5a
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 57744ee6-2305-4310-b64b-292817c8658a
insert into integration_tokens (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
